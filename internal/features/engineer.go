// Package features derives the weighted severity and ratio features that feed
// the scoring model, including the batch-relative safety score target.
package features

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/maply-labs/risk-engine/internal/dataset"
)

// severityWeights expresses relative harm per crime category. Categories
// absent from the input are omitted from the sum; weights are not renormalized.
var severityWeights = map[string]float64{
	dataset.ColDowryDeaths:   10,
	dataset.ColRape:          9,
	dataset.ColImportation:   8,
	dataset.ColKidnapping:    7,
	dataset.ColCruelty:       5,
	dataset.ColAssaultModest: 3,
	dataset.ColInsultModest:  2,
}

// Region is one engineered region row.
type Region struct {
	State    string
	District string

	// Counts holds the raw category counts, zero-filled for categories the
	// reconciled schema carries but the row left blank.
	Counts map[string]float64

	TotalCrimes           float64
	DomesticViolenceTotal float64
	PublicSafetyTotal     float64
	SeverityScore         float64

	// SafetyScore is 0-100, higher = safer. It is min-max scaled against the
	// severity range of the current batch, so the same counts score differently
	// when processed alongside a different set of regions.
	SafetyScore float64

	DVToTotalRatio     float64
	PublicToTotalRatio float64
}

// Engineer computes the derived features for every row of the reconciled
// table. The transform is pure; row order is preserved.
func Engineer(t *dataset.Table) ([]Region, error) {
	if t == nil || len(t.Rows) == 0 {
		return nil, eris.New("features: empty table")
	}

	regions := make([]Region, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := Region{
			State:    strings.TrimSpace(row[dataset.ColState]),
			District: strings.TrimSpace(row[dataset.ColDistrict]),
			Counts:   make(map[string]float64, len(dataset.Categories)),
		}

		for _, cat := range dataset.Categories {
			if !t.HasColumn(cat) {
				continue
			}
			r.Counts[cat] = parseCount(row[cat])
		}

		for _, v := range r.Counts {
			r.TotalCrimes += v
		}
		r.DomesticViolenceTotal = r.Counts[dataset.ColDowryDeaths] + r.Counts[dataset.ColCruelty]
		r.PublicSafetyTotal = r.Counts[dataset.ColRape] + r.Counts[dataset.ColAssaultModest] + r.Counts[dataset.ColInsultModest]

		for cat, w := range severityWeights {
			if v, ok := r.Counts[cat]; ok {
				r.SeverityScore += v * w
			}
		}

		// +1 denominator keeps the ratios finite for zero-crime regions.
		r.DVToTotalRatio = r.DomesticViolenceTotal / (r.TotalCrimes + 1)
		r.PublicToTotalRatio = r.PublicSafetyTotal / (r.TotalCrimes + 1)

		regions = append(regions, r)
	}

	applySafetyScore(regions)
	return regions, nil
}

// applySafetyScore min-max normalizes severity across the batch and inverts it
// onto 0-100. A degenerate batch (all severities equal) scores 100 everywhere.
func applySafetyScore(regions []Region) {
	minSev, maxSev := regions[0].SeverityScore, regions[0].SeverityScore
	for _, r := range regions[1:] {
		if r.SeverityScore < minSev {
			minSev = r.SeverityScore
		}
		if r.SeverityScore > maxSev {
			maxSev = r.SeverityScore
		}
	}

	span := maxSev - minSev
	for i := range regions {
		norm := 0.0
		if span > 0 {
			norm = (regions[i].SeverityScore - minSev) / span
		}
		regions[i].SafetyScore = 100 * (1 - norm)
	}
}

// parseCount parses a raw cell as a non-negative count, treating blanks and
// markers like "NA" as zero.
func parseCount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "na") || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
