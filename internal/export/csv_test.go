package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulminer/internal/extract"
)

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "csv")
	table := &extract.Table{
		Name:    "armor",
		Columns: []string{"key", "description"},
		Rows: [][]string{
			{"Knight Armor", "Reduces damage by [10,12]%"},
			{"Rogue, Light", "Quote \"here\""},
		},
	}

	path, err := WriteCSV(dir, table)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "armor.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, table.Columns, records[0])
	assert.Equal(t, table.Rows[1], records[2])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteCSV_Overwrites(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteCSV(dir, &extract.Table{Name: "weapons", Columns: []string{"class"}, Rows: [][]string{{"A"}, {"B"}}})
	require.NoError(t, err)
	path, err := WriteCSV(dir, &extract.Table{Name: "weapons", Columns: []string{"class"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class\n", string(data))
}

func TestWriteCSV_NoName(t *testing.T) {
	_, err := WriteCSV(t.TempDir(), &extract.Table{Columns: []string{"class"}})
	require.Error(t, err)
}
