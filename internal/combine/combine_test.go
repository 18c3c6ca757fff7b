package combine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"soulminer/internal/logger"
)

type outfit struct {
	id     int
	key    string
	gender string
}

func outfitSpec(slots ...string) Spec[outfit] {
	return Spec[outfit]{
		ID:      func(o outfit) int { return o.id },
		Key:     func(o outfit) string { return o.key },
		Variant: func(o outfit) string { return o.gender },
		Slots:   slots,
	}
}

func newEngine(t *testing.T, spec Spec[outfit]) (*Engine[outfit], *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	engine, err := New(spec, logger.FromZap(zap.New(core)))
	require.NoError(t, err)
	return engine, logs
}

func TestGroupByIdentity(t *testing.T) {
	records := []outfit{
		{id: 1, key: "K", gender: "male"},
		{id: 2, key: "J", gender: "female"},
		{id: 3, key: "K", gender: "female"},
		{id: 4, key: "K", gender: "male"},
	}
	groups := GroupByIdentity(records, func(o outfit) string { return o.key })

	assert.Equal(t, []string{"K", "J"}, groups.Keys())
	assert.Equal(t, 2, groups.Len())
	assert.Equal(t, []outfit{records[0], records[2], records[3]}, groups.Get("K"))
	assert.Equal(t, []outfit{records[1]}, groups.Get("J"))
	assert.Nil(t, groups.Get("missing"))
}

func TestCombine_PairsAndLoneRecords(t *testing.T) {
	engine, logs := newEngine(t, outfitSpec("male", "female"))

	combined, err := engine.Combine([]outfit{
		{id: 1, key: "K", gender: "male"},
		{id: 2, key: "K", gender: "female"},
		{id: 3, key: "J", gender: "female"},
	})
	require.NoError(t, err)
	require.Len(t, combined, 2)

	k := combined[0]
	assert.Equal(t, "K", k.Key)
	male, ok := k.Slot("male")
	require.True(t, ok)
	assert.Equal(t, 1, male.id)
	female, ok := k.Slot("female")
	require.True(t, ok)
	assert.Equal(t, 2, female.id)

	j := combined[1]
	assert.Equal(t, "J", j.Key)
	assert.Equal(t, []string{"female"}, j.Variants())
	_, ok = j.Slot("male")
	assert.False(t, ok)

	assert.Zero(t, logs.Len())
}

func TestMerge_ConflictKeepsFirst(t *testing.T) {
	engine, logs := newEngine(t, outfitSpec())

	combined, err := engine.Merge("K", []outfit{
		{id: 10, key: "K", gender: "male"},
		{id: 11, key: "K", gender: "male"},
		{id: 12, key: "K", gender: "female"},
	})
	require.NoError(t, err)

	male, _ := combined.Slot("male")
	assert.Equal(t, 10, male.id)
	assert.Equal(t, []string{"male", "female"}, combined.Variants())
	assert.Len(t, combined.Records(), 2)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.EqualValues(t, 10, fields["kept_id"])
	assert.EqualValues(t, 11, fields["dropped_id"])
}

func TestMerge_ConflictNamesRecords(t *testing.T) {
	spec := outfitSpec("male", "female")
	spec.Name = func(o outfit) string { return fmt.Sprintf("BP_Outfit_%d_C", o.id) }
	engine, logs := newEngine(t, spec)

	_, err := engine.Merge("K", []outfit{
		{id: 10, key: "K", gender: "male"},
		{id: 11, key: "K", gender: "male"},
		{id: 12, key: "K", gender: "unisex"},
	})
	require.NoError(t, err)

	conflicts := logs.FilterMessage("variant slot already filled, keeping first").All()
	require.Len(t, conflicts, 1)
	fields := conflicts[0].ContextMap()
	assert.Equal(t, "BP_Outfit_10_C", fields["kept_name"])
	assert.Equal(t, "BP_Outfit_11_C", fields["dropped_name"])

	unexpected := logs.FilterMessage("unexpected variant, ignoring record").All()
	require.Len(t, unexpected, 1)
	assert.Equal(t, "BP_Outfit_12_C", unexpected[0].ContextMap()["record_name"])
}

func TestMerge_EmptyGroup(t *testing.T) {
	engine, _ := newEngine(t, outfitSpec())
	_, err := engine.Merge("K", nil)
	assert.ErrorIs(t, err, ErrEmptyGroup)
}

func TestMerge_UnexpectedVariant(t *testing.T) {
	engine, logs := newEngine(t, outfitSpec("male", "female"))

	combined, err := engine.Combine([]outfit{
		{id: 1, key: "K", gender: "male"},
		{id: 2, key: "K", gender: "unisex"},
		{id: 3, key: "Q", gender: "unisex"},
	})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, []string{"male"}, combined[0].Variants())
	assert.Equal(t, 2, logs.Len())
}

func TestNew_RequiresFunctions(t *testing.T) {
	_, err := New(Spec[outfit]{Key: func(o outfit) string { return o.key }}, nil)
	assert.Error(t, err)
}
