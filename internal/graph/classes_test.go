package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulminer/internal/asset"
	"soulminer/internal/hierarchy"
)

func TestClassInputs(t *testing.T) {
	classes := []*asset.Class{
		asset.NewClass("Object", "", "/Script/CoreUObject", nil),
		asset.NewClass("BP_WeaponBase_C", "Object", "/Game/Weapons/BP_WeaponBase", nil),
		asset.NewClass("BP_Sword_C", "BP_WeaponBase_C", "/Game/Weapons/BP_Sword", nil),
		asset.NewClass("BP_Orphan_C", "Missing_C", "/Game/BP_Orphan", nil),
	}
	classes[1].Abstract = true
	idx, err := hierarchy.Build(context.Background(), asset.Static{List: classes}.Classes(context.Background()))
	require.NoError(t, err)

	inputs := ClassInputs(idx, map[string][]string{"bp_sword_c": {"weapons"}})
	require.Len(t, inputs, 4)

	assert.Equal(t, ClassInput{Name: "Object", Package: "/Script/CoreUObject"}, inputs[0])
	assert.Equal(t, "Object", inputs[1].Super)
	assert.True(t, inputs[1].Abstract)
	assert.Equal(t, 2, inputs[2].Depth)
	assert.Equal(t, []string{"weapons"}, inputs[2].Domains)
	assert.Empty(t, inputs[3].Super, "unresolved ancestors are not linked")
}

func TestClassRow(t *testing.T) {
	row := classRow(ClassInput{Name: "BP_Sword_C", Super: "BP_WeaponBase_C", Depth: 2})

	assert.Equal(t, "bp_sword_c", row["name_normalized"])
	assert.Equal(t, "bp_weaponbase_c", row["super_normalized"])
	assert.Equal(t, []string{}, row["domains"])
	assert.Equal(t, 2, row["depth"])
}
