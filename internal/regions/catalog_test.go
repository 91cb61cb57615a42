package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maply-labs/risk-engine/internal/model"
)

func loadedCatalog() *Catalog {
	c := NewCatalog()
	c.Replace([]model.RegionResult{
		{State: "MAHARASHTRA", District: "PUNE", SafetyScore: 82.5, RiskCategory: model.RiskLow},
		{State: "MAHARASHTRA", District: "MUMBAI", SafetyScore: 41.0, RiskCategory: model.RiskHigh},
		{State: "GOA", District: "PANAJI", SafetyScore: 100, RiskCategory: model.RiskLow},
	})
	return c
}

func TestCatalog_LookupIsCaseInsensitive(t *testing.T) {
	c := loadedCatalog()

	r, ok := c.Lookup("maharashtra", "Pune")
	require.True(t, ok)
	// Stored casing is preserved in the result.
	assert.Equal(t, "MAHARASHTRA", r.State)
	assert.Equal(t, 82.5, r.SafetyScore)

	_, ok = c.Lookup("MAHARASHTRA", "KOCHI")
	assert.False(t, ok)
}

func TestCatalog_Listings(t *testing.T) {
	c := loadedCatalog()

	assert.Equal(t, []string{"Goa", "Maharashtra"}, c.States())
	assert.Equal(t, []string{"Mumbai", "Pune"}, c.Districts("maharashtra"))
	assert.Empty(t, c.Districts("KERALA"))
}

func TestCatalog_AllEmpty(t *testing.T) {
	env := NewCatalog().All()
	assert.Equal(t, model.StatusError, env.Status)
}

func TestCatalog_ReplaceSwapsWholesale(t *testing.T) {
	c := loadedCatalog()
	assert.Equal(t, 3, c.Len())

	c.Replace([]model.RegionResult{{State: "KERALA", District: "KOCHI"}})
	assert.Equal(t, 1, c.Len())
	_, ok := c.Lookup("GOA", "PANAJI")
	assert.False(t, ok)
}
