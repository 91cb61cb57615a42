package dataset

import "github.com/rotisserie/eris"

// ErrDataUnavailable is returned when none of the supplied dataset locations
// could be loaded.
var ErrDataUnavailable = eris.New("no usable input datasets")

// ErrSchemaMismatch is returned when reconciliation leaves no usable common
// schema (the region key columns are not shared by every source).
var ErrSchemaMismatch = eris.New("no common columns survive reconciliation")
