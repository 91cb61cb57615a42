package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maply-labs/risk-engine/internal/dataset"
	"github.com/maply-labs/risk-engine/internal/fetcher"
	"github.com/maply-labs/risk-engine/internal/model"
	"github.com/maply-labs/risk-engine/internal/scoring"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crimes.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestEngine() *Engine {
	reconciler := dataset.NewReconciler(&fetcher.Resolver{}, 1)
	return New(reconciler, scoring.DefaultBoostOptions(), nil)
}

const threeRegionCSV = "STATE/UT,DISTRICT,Rape,Kidnapping and Abduction,Dowry Deaths," +
	"Assault on women with intent to outrage her modesty,Insult to modesty of Women," +
	"Cruelty by Husband or his Relatives,Importation of Girls\n" +
	"MAHARASHTRA,PUNE,10,0,0,0,0,0,0\n" +
	"GOA,PANAJI,0,0,0,0,0,0,0\n" +
	"DELHI,NEW DELHI,50,0,0,0,0,0,0\n"

func TestRun_EndToEnd(t *testing.T) {
	path := writeCSV(t, threeRegionCSV)

	env := newTestEngine().Run(context.Background(), []string{path})

	require.Equal(t, model.StatusSuccess, env.Status)
	require.Equal(t, 3, env.TotalRegions)
	require.Len(t, env.Data, 3)
	assert.Empty(t, env.Message)

	byDistrict := make(map[string]model.RegionResult)
	for _, r := range env.Data {
		byDistrict[r.District] = r

		assert.GreaterOrEqual(t, r.SafetyScore, 0.0)
		assert.LessOrEqual(t, r.SafetyScore, 100.0)
		assert.Equal(t, model.ClassifyRisk(r.SafetyScore), r.RiskCategory)
	}

	// The zero-crime region is the batch severity minimum: exactly 100.
	assert.Equal(t, 100.0, byDistrict["PANAJI"].SafetyScore)
	assert.Equal(t, model.RiskLow, byDistrict["PANAJI"].RiskCategory)

	// The heaviest region scores lowest of the three.
	assert.Less(t, byDistrict["NEW DELHI"].SafetyScore, byDistrict["PUNE"].SafetyScore)
	assert.Less(t, byDistrict["NEW DELHI"].SafetyScore, byDistrict["PANAJI"].SafetyScore)

	// Row order is preserved.
	assert.Equal(t, "PUNE", env.Data[0].District)
	assert.Equal(t, "NEW DELHI", env.Data[2].District)
}

func TestRun_NoUsableSources(t *testing.T) {
	env := newTestEngine().Run(context.Background(), []string{"/nonexistent/a.csv"})

	assert.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "no usable input datasets", env.Message)
	assert.Zero(t, env.TotalRegions)
	assert.Empty(t, env.Data)
}

func TestRun_InsufficientRows(t *testing.T) {
	path := writeCSV(t, "STATE/UT,DISTRICT,Rape\nGOA,PANAJI,5\n")

	env := newTestEngine().Run(context.Background(), []string{path})

	assert.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "insufficient data to fit model", env.Message)
}

func TestRun_ConstantSeverityIsError(t *testing.T) {
	// Equal severities produce a constant safety-score target.
	path := writeCSV(t, "STATE/UT,DISTRICT,Rape\nGOA,PANAJI,5\nKERALA,KOCHI,5\n")

	env := newTestEngine().Run(context.Background(), []string{path})

	assert.Equal(t, model.StatusError, env.Status)
	assert.Equal(t, "insufficient data to fit model", env.Message)
}
