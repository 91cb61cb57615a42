// Package scoring fits a robust-scaled gradient-boosted regressor on the
// engineered features and classifies predictions into risk tiers.
package scoring

import "github.com/rotisserie/eris"

// ErrInsufficientData is returned when training is attempted with fewer than
// two distinct rows or a constant safety-score target.
var ErrInsufficientData = eris.New("insufficient data to fit model")

// ErrModelNotTrained is returned when inference is requested before training.
var ErrModelNotTrained = eris.New("model not trained")
