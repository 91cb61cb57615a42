package dataset

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/maply-labs/risk-engine/internal/fetcher"
)

// Reconciler loads tabular sources and harmonizes them into one Table.
type Reconciler struct {
	resolver       *fetcher.Resolver
	maxConcurrency int
}

// NewReconciler creates a Reconciler. maxConcurrency bounds parallel source
// loads; values < 1 load sequentially.
func NewReconciler(resolver *fetcher.Resolver, maxConcurrency int) *Reconciler {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Reconciler{resolver: resolver, maxConcurrency: maxConcurrency}
}

// Load fetches every location, normalizes headers, restricts to the column
// intersection, concatenates in input order, and drops exact duplicates.
//
// Sources that cannot be fetched or parsed are skipped with a warning.
// ErrDataUnavailable is returned when no source is usable; ErrSchemaMismatch
// when the surviving intersection lacks the STATE/UT and DISTRICT key columns.
func (r *Reconciler) Load(ctx context.Context, locations []string) (*Table, error) {
	log := zap.L().With(zap.String("component", "dataset.reconciler"))

	loaded := make([]*Table, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)
	for i, loc := range locations {
		g.Go(func() error {
			raw, err := r.resolver.ReadTable(gctx, loc)
			if err != nil {
				log.Warn("skipping unreadable source", zap.String("location", loc), zap.Error(err))
				return nil
			}
			loaded[i] = normalize(raw)
			log.Debug("source loaded",
				zap.String("location", loc),
				zap.Int("rows", len(loaded[i].Rows)),
				zap.Int("columns", len(loaded[i].Columns)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tables []*Table
	for _, t := range loaded {
		if t != nil {
			tables = append(tables, t)
		}
	}
	if len(tables) == 0 {
		return nil, ErrDataUnavailable
	}

	common := intersectColumns(tables)
	combined := concatDedupe(tables, common)

	if !combined.HasColumn(ColState) || !combined.HasColumn(ColDistrict) {
		return nil, ErrSchemaMismatch
	}

	log.Info("sources reconciled",
		zap.Int("sources", len(tables)),
		zap.Int("columns", len(combined.Columns)),
		zap.Int("rows", len(combined.Rows)),
	)
	return combined, nil
}

// normalize converts a parsed source to a Table with canonical column names.
// A later duplicate header wins, matching a keyed-row representation.
func normalize(raw *fetcher.Table) *Table {
	cols := make([]string, 0, len(raw.Header))
	seen := make(map[string]bool, len(raw.Header))
	for _, h := range raw.Header {
		name := renameColumn(h)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, name)
	}

	t := &Table{Columns: cols}
	for _, rec := range raw.Rows {
		row := make(map[string]string, len(cols))
		for i, h := range raw.Header {
			if i >= len(rec) {
				break
			}
			row[renameColumn(h)] = rec[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// intersectColumns keeps only columns present in every source, preserving the
// first source's column order so output is deterministic.
func intersectColumns(tables []*Table) []string {
	counts := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Columns {
			counts[c]++
		}
	}

	var common []string
	for _, c := range tables[0].Columns {
		if counts[c] == len(tables) {
			common = append(common, c)
		}
	}
	return common
}

// concatDedupe concatenates rows under the common-column projection and drops
// exact duplicates, keeping first-seen order.
func concatDedupe(tables []*Table, common []string) *Table {
	out := &Table{Columns: common}
	seen := make(map[string]bool)

	for _, t := range tables {
		for _, row := range t.Rows {
			projected := make(map[string]string, len(common))
			for _, c := range common {
				projected[c] = row[c]
			}
			key := out.rowKey(projected)
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Rows = append(out.Rows, projected)
		}
	}
	return out
}
