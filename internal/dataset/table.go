// Package dataset reconciles heterogeneous crime-statistics tables into one
// canonical schema: header normalization, column intersection, concatenation,
// and stable deduplication.
package dataset

import "strings"

// Canonical key columns identifying a region.
const (
	ColState    = "STATE/UT"
	ColDistrict = "DISTRICT"
)

// Canonical crime-category columns. The vocabulary follows the NCRB
// crimes-against-women tables the engine was built for.
const (
	ColRape          = "Rape"
	ColKidnapping    = "Kidnapping and Abduction"
	ColDowryDeaths   = "Dowry Deaths"
	ColAssaultModest = "Assault on women with intent to outrage her modesty"
	ColInsultModest  = "Insult to modesty of Women"
	ColCruelty       = "Cruelty by Husband or his Relatives"
	ColImportation   = "Importation of Girls"
)

// Categories lists the 7 canonical crime-category columns.
var Categories = []string{
	ColRape,
	ColKidnapping,
	ColDowryDeaths,
	ColAssaultModest,
	ColInsultModest,
	ColCruelty,
	ColImportation,
}

// renameMap normalizes source-specific header variants to the canonical
// vocabulary before columns are intersected.
var renameMap = map[string]string{
	"State/ UT":      ColState,
	"District/ Area": ColDistrict,
	"Kidnapping & Abduction_Total":                           ColKidnapping,
	"Assault on Women with intent to outrage her Modesty_Total": ColAssaultModest,
	"Insult to the Modesty of Women_Total":                   ColInsultModest,
	"Importation of Girls from Foreign Country":              ColImportation,
}

// Table is a unified region table: an ordered column list plus rows keyed by
// column name. Cell values stay as strings until feature engineering parses them.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// rowKey builds an exact-duplicate detection key across the table's columns.
func (t *Table) rowKey(row map[string]string) string {
	var b strings.Builder
	for _, c := range t.Columns {
		b.WriteString(row[c])
		b.WriteByte('\x1f')
	}
	return b.String()
}

// renameColumn maps a raw header to its canonical name, passing through
// headers that have no alias.
func renameColumn(raw string) string {
	if canonical, ok := renameMap[strings.TrimSpace(raw)]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}
