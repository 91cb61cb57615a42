package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maply-labs/risk-engine/internal/fetcher"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestReconciler() *Reconciler {
	return NewReconciler(&fetcher.Resolver{}, 2)
}

func TestLoad_RenamesHeaders(t *testing.T) {
	path := writeCSV(t, "a.csv",
		"State/ UT,District/ Area,Rape,Kidnapping & Abduction_Total\n"+
			"MAHARASHTRA,PUNE,10,5\n")

	table, err := newTestReconciler().Load(context.Background(), []string{path})
	require.NoError(t, err)

	assert.Equal(t, []string{ColState, ColDistrict, ColRape, ColKidnapping}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "MAHARASHTRA", table.Rows[0][ColState])
	assert.Equal(t, "5", table.Rows[0][ColKidnapping])
}

func TestLoad_ColumnIntersection(t *testing.T) {
	a := writeCSV(t, "a.csv", "STATE/UT,DISTRICT,Rape,Dowry Deaths\nKERALA,KOCHI,1,2\n")
	b := writeCSV(t, "b.csv", "STATE/UT,DISTRICT,Rape\nGOA,PANAJI,3\n")

	table, err := newTestReconciler().Load(context.Background(), []string{a, b})
	require.NoError(t, err)

	// Only columns present in every source survive, in first-source order.
	assert.Equal(t, []string{ColState, ColDistrict, ColRape}, table.Columns)
	assert.Len(t, table.Rows, 2)
}

func TestLoad_DedupeIsStable(t *testing.T) {
	content := "STATE/UT,DISTRICT,Rape\nKERALA,KOCHI,1\nGOA,PANAJI,3\n"
	a := writeCSV(t, "a.csv", content)
	b := writeCSV(t, "b.csv", content)

	once, err := newTestReconciler().Load(context.Background(), []string{a})
	require.NoError(t, err)
	twice, err := newTestReconciler().Load(context.Background(), []string{a, b})
	require.NoError(t, err)

	// Reconciling the same data twice yields identical output.
	assert.Equal(t, once, twice)
	assert.Equal(t, "KOCHI", twice.Rows[0][ColDistrict])
	assert.Equal(t, "PANAJI", twice.Rows[1][ColDistrict])
}

func TestLoad_SkipsUnreadableSources(t *testing.T) {
	good := writeCSV(t, "good.csv", "STATE/UT,DISTRICT,Rape\nKERALA,KOCHI,1\n")

	table, err := newTestReconciler().Load(context.Background(), []string{"/nonexistent/bad.csv", good})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestLoad_NoUsableSources(t *testing.T) {
	_, err := newTestReconciler().Load(context.Background(), []string{"/nonexistent/a.csv", "/nonexistent/b.csv"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataUnavailable))
}

func TestLoad_SchemaMismatch(t *testing.T) {
	a := writeCSV(t, "a.csv", "STATE/UT,DISTRICT,Rape\nKERALA,KOCHI,1\n")
	b := writeCSV(t, "b.csv", "Totally,Different,Columns\nx,y,z\n")

	_, err := newTestReconciler().Load(context.Background(), []string{a, b})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSchemaMismatch))
}

func TestNormalize_DropsDuplicateHeaders(t *testing.T) {
	raw := &fetcher.Table{
		Header: []string{"STATE/UT", "STATE/UT", "Rape"},
		Rows:   [][]string{{"KERALA", "IGNORED", "1"}},
	}

	table := normalize(raw)
	assert.Equal(t, []string{ColState, ColRape}, table.Columns)
	// Later duplicate wins in the keyed row.
	assert.Equal(t, "IGNORED", table.Rows[0][ColState])
}
