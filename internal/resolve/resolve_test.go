package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"soulminer/internal/asset"
	"soulminer/internal/hierarchy"
	"soulminer/internal/logger"
)

func text(s string) any {
	return map[string]any{"Namespace": "", "Key": s, "SourceString": s, "LocalizedString": s}
}

func icon(path string) any {
	return map[string]any{"AssetPathName": path, "SubPathString": ""}
}

func withDefaults(name, super string, props ...asset.Property) *asset.Class {
	return asset.NewClass(name, super, "/Game/"+name, asset.StaticObject("Default__"+name, props...))
}

func index(t *testing.T, classes ...*asset.Class) *hierarchy.Index {
	t.Helper()
	idx, err := hierarchy.Build(context.Background(), asset.Static{List: classes}.Classes(context.Background()))
	require.NoError(t, err)
	return idx
}

func TestResolve_DescendantWinsPerSlot(t *testing.T) {
	base := withDefaults("BP_Food_Base_C", "",
		asset.Property{Name: "Name", Value: text("Food")},
		asset.Property{Name: "Icon", Value: icon("/Game/UI/T_Food.T_Food")},
		asset.Property{Name: "Description", Value: text("Edible.")},
	)
	leaf := withDefaults("BP_Apple_C", "BP_Food_Base_C",
		asset.Property{Name: "Name", Value: text("Apple")},
	)
	r := New(index(t, base, leaf), nil)

	result, err := r.Resolve(leaf, DisplayQuery())
	require.NoError(t, err)
	assert.True(t, result.Complete())
	assert.Equal(t, "Apple", result.Text(SlotName))
	assert.Equal(t, "/Game/UI/T_Food.T_Food", result.Text(SlotIcon))
	assert.Equal(t, "Edible.", result.Text(SlotDescription))

	name, _ := result.Value(SlotName)
	assert.Equal(t, "BP_Apple_C", name.Class)
	ico, _ := result.Value(SlotIcon)
	assert.Equal(t, "BP_Food_Base_C", ico.Class)
}

func TestResolve_StopsWhenComplete(t *testing.T) {
	loads := 0
	root := asset.NewClass("Root_C", "", "/Game/Root", func() (*asset.Object, error) {
		loads++
		return &asset.Object{Name: "Default__Root_C"}, nil
	})
	leaf := withDefaults("Leaf_C", "Root_C",
		asset.Property{Name: "Name", Value: text("Leaf")},
		asset.Property{Name: "Description", Value: text("d")},
		asset.Property{Name: "Icon", Value: icon("/Game/T_Leaf.T_Leaf")},
	)
	r := New(index(t, root, leaf), nil)

	result, err := r.Resolve(leaf, DisplayQuery())
	require.NoError(t, err)
	assert.True(t, result.Complete())
	assert.Zero(t, loads)
}

func TestResolve_SkipsMissingDefaults(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	root := withDefaults("Root_C", "", asset.Property{Name: "Icon", Value: icon("/Game/T_Root.T_Root")})
	broken := asset.NewClass("Mid_C", "Root_C", "/Game/Mid", func() (*asset.Object, error) {
		return nil, errors.New("package vanished")
	})
	native := asset.NewClass("Native", "Mid_C", "/Script", nil)
	leaf := withDefaults("Leaf_C", "Native", asset.Property{Name: "Name", Value: text("Leaf")})
	r := New(index(t, root, broken, native, leaf), logger.FromZap(zap.New(core)))

	result, err := r.Resolve(leaf, DisplayQuery())
	require.NoError(t, err)
	assert.Equal(t, "Leaf", result.Text(SlotName))
	assert.Equal(t, "/Game/T_Root.T_Root", result.Text(SlotIcon))
	assert.Equal(t, []string{SlotDescription}, result.Missing())
	assert.Empty(t, result.MissingRequired())
	assert.Equal(t, 1, logs.Len())
}

func TestResolve_CaseInsensitiveFirstMatchWins(t *testing.T) {
	leaf := withDefaults("Leaf_C", "",
		asset.Property{Name: "DISPLAYNAME", Value: text("first")},
		asset.Property{Name: "DisplayName", Value: text("second")},
	)
	r := New(index(t, leaf), nil)

	result, err := r.Resolve(leaf, Query{Slots: []Slot{{Name: "title", Property: "displayname", Kind: KindText, Required: true}}})
	require.NoError(t, err)
	assert.Equal(t, "first", result.Text("title"))
	assert.Equal(t, "first", result.Text("TITLE"))
}

func TestResolve_NullValuesDoNotFill(t *testing.T) {
	base := withDefaults("Base_C", "", asset.Property{Name: "Icon", Value: icon("/Game/T_Base.T_Base")})
	leaf := withDefaults("Leaf_C", "Base_C",
		asset.Property{Name: "Name", Value: text("Leaf")},
		asset.Property{Name: "Icon", Value: icon("None")},
	)
	r := New(index(t, base, leaf), nil)

	result, err := r.Resolve(leaf, DisplayQuery())
	require.NoError(t, err)
	assert.Equal(t, "/Game/T_Base.T_Base", result.Text(SlotIcon))
}

func TestResolve_ExtraPropertySlots(t *testing.T) {
	leaf := withDefaults("Leaf_C", "",
		asset.Property{Name: "Name", Value: text("Leaf")},
		asset.Property{Name: "MaxStack", Value: 20},
	)
	r := New(index(t, leaf), nil)

	result, err := r.Resolve(leaf, DisplayQuery(Slot{Name: "stack", Property: "MaxStack", Kind: KindProperty}))
	require.NoError(t, err)
	assert.Equal(t, "20", result.Text("stack"))
	assert.False(t, result.Complete())
}

func TestResolve_UnindexedAncestorTerminates(t *testing.T) {
	leaf := withDefaults("Leaf_C", "NeverIndexed_C", asset.Property{Name: "Name", Value: text("Leaf")})
	r := New(index(t, leaf), nil)

	result, err := r.Resolve(leaf, DisplayQuery())
	require.NoError(t, err)
	assert.Equal(t, "Leaf", result.Text(SlotName))
	assert.ElementsMatch(t, []string{SlotDescription, SlotIcon}, result.Missing())
}

func TestResolve_StartOutsideIndex(t *testing.T) {
	orphan := withDefaults("Orphan_C", "Base_C", asset.Property{Name: "Name", Value: text("Orphan")})
	base := withDefaults("Base_C", "", asset.Property{Name: "Icon", Value: icon("/Game/T.T")})
	r := New(index(t, base), nil)

	result, err := r.Resolve(orphan, DisplayQuery())
	require.NoError(t, err)
	assert.Equal(t, "Orphan", result.Text(SlotName))
	assert.False(t, result.Filled(SlotIcon))
}

func TestResolve_CyclicChainTerminates(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	a := withDefaults("A_C", "B_C", asset.Property{Name: "Name", Value: text("A")})
	b := withDefaults("B_C", "A_C")
	r := New(index(t, a, b), logger.FromZap(zap.New(core)))

	result, err := r.Resolve(a, DisplayQuery())
	require.NoError(t, err)
	assert.Equal(t, "A", result.Text(SlotName))
	assert.Equal(t, 1, logs.Len())
}

func TestResolve_InvalidQuery(t *testing.T) {
	leaf := withDefaults("Leaf_C", "")
	r := New(index(t, leaf), nil)

	cases := []struct {
		name  string
		start *asset.Class
		query Query
	}{
		{name: "nil start", start: nil, query: DisplayQuery()},
		{name: "empty", start: leaf, query: Query{}},
		{name: "no required slot", start: leaf, query: Query{Slots: []Slot{{Name: "icon", Property: "Icon"}}}},
		{name: "duplicate", start: leaf, query: DisplayQuery(Slot{Name: "Name", Property: "Other"})},
		{name: "no property", start: leaf, query: Query{Slots: []Slot{{Name: "name", Required: true}}}},
		{name: "bad kind", start: leaf, query: Query{Slots: []Slot{{Name: "name", Property: "Name", Kind: "blob", Required: true}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(tc.start, tc.query)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}
