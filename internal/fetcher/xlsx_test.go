package fetcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Crimes")
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().Value = v
		}
	}

	path := filepath.Join(t.TempDir(), "crimes.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestParseXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"STATE/UT", "DISTRICT", "Rape"},
		{"GOA", "PANAJI", "12"},
		{"GOA", "MARGAO", "7"},
	})

	table, err := ParseXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"STATE/UT", "DISTRICT", "Rape"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"GOA", "PANAJI", "12"}, table.Rows[0])
	assert.Equal(t, []string{"GOA", "MARGAO", "7"}, table.Rows[1])
}

func TestParseXLSX_SheetSelection(t *testing.T) {
	path := writeWorkbook(t, [][]string{{"STATE/UT"}, {"GOA"}})

	_, err := ParseXLSX(path, XLSXOptions{SheetName: "Crimes"})
	assert.NoError(t, err)

	_, err = ParseXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ParseXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestParseXLSX_EmptySheet(t *testing.T) {
	path := writeWorkbook(t, nil)

	_, err := ParseXLSX(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty sheet")
}

func TestResolver_LocalXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"STATE/UT", "DISTRICT"},
		{"GOA", "PANAJI"},
	})

	table, err := (&Resolver{}).ReadTable(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"STATE/UT", "DISTRICT"}, table.Header)
	require.Len(t, table.Rows, 1)
}
