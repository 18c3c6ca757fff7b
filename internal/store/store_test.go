package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdent(t *testing.T) {
	quoted, err := QuoteIdent("Armor_Sets")
	require.NoError(t, err)
	assert.Equal(t, `"armor_sets"`, quoted)

	for _, bad := range []string{"", "1st", "armor sets", `a"b`, "x;--"} {
		_, err := QuoteIdent(bad)
		assert.ErrorIs(t, err, ErrInvalidIdent, bad)
	}
}

func TestValidateTable(t *testing.T) {
	ok := Table{Name: "weapons", Columns: []string{"class", "name"}, Rows: [][]string{{"A", "a"}}}
	require.NoError(t, ValidateTable(ok))

	cases := map[string]Table{
		"no columns":       {Name: "weapons"},
		"duplicate column": {Name: "weapons", Columns: []string{"name", "Name"}},
		"reserved column":  {Name: "weapons", Columns: []string{"row_num"}},
		"short row":        {Name: "weapons", Columns: []string{"class", "name"}, Rows: [][]string{{"A"}}},
		"bad table name":   {Name: "weapons!", Columns: []string{"class"}},
	}
	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateTable(table))
		})
	}
}

func TestPositionalArgs(t *testing.T) {
	args := PositionalArgs(map[string]any{"2": "b", "1": "a"})
	assert.Equal(t, []any{"a", "b"}, args)
	assert.Empty(t, PositionalArgs(nil))
}

func TestPlainValue(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	assert.Equal(t, "Plate", PlainValue([]byte("Plate")))
	assert.Equal(t, id.String(), PlainValue([16]byte(id)))
	assert.Equal(t, "2024-05-01T11:00:00Z", PlainValue(ts))
	assert.Equal(t, int64(3), PlainValue(int64(3)))
	assert.Nil(t, PlainValue(nil))
}
