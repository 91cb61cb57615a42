// Package regions holds the process-wide cache of scored regions that the
// API layer queries. It is loaded once at startup and swapped wholesale on
// refresh; the pipeline itself never touches it.
package regions

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/maply-labs/risk-engine/internal/model"
)

var titleCaser = cases.Title(language.English)

// Catalog is a read-mostly cache of the latest pipeline results.
type Catalog struct {
	mu      sync.RWMutex
	results []model.RegionResult
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Replace swaps in a new result set.
func (c *Catalog) Replace(results []model.RegionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = results
}

// Len returns the number of cached regions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// All returns the cached results as a success envelope. An unloaded catalog
// yields an error envelope so consumers see the same shape either way.
func (c *Catalog) All() model.Envelope {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.results) == 0 {
		return model.ErrorEnvelope("no risk data loaded")
	}
	return model.SuccessEnvelope(c.results)
}

// Lookup finds a region by case-insensitive state+district match.
func (c *Catalog) Lookup(state, district string) (model.RegionResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.results {
		if strings.EqualFold(r.State, state) && strings.EqualFold(r.District, district) {
			return r, true
		}
	}
	return model.RegionResult{}, false
}

// States returns the distinct states, title-cased for display, sorted.
func (c *Catalog) States() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return distinct(c.results, func(r model.RegionResult) string { return r.State })
}

// Districts returns the distinct districts of one state (case-insensitive),
// title-cased for display, sorted.
func (c *Catalog) Districts(state string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var filtered []model.RegionResult
	for _, r := range c.results {
		if strings.EqualFold(r.State, state) {
			filtered = append(filtered, r)
		}
	}
	return distinct(filtered, func(r model.RegionResult) string { return r.District })
}

func distinct(results []model.RegionResult, key func(model.RegionResult) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range results {
		display := titleCaser.String(strings.ToLower(strings.TrimSpace(key(r))))
		if display == "" || seen[display] {
			continue
		}
		seen[display] = true
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}
