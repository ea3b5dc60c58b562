package dataset

import "errors"

// ErrMissingColumn indicates a requested response or predictor name is absent
// from the historical table. Callers check with errors.Is.
var ErrMissingColumn = errors.New("column not found in historical series")

// ErrInsufficientData indicates a series does not carry enough observations to
// support the requested fit.
var ErrInsufficientData = errors.New("insufficient data for fit")

// ErrDuplicateComponent indicates a structural component key appears more
// than once within one stream-year group.
var ErrDuplicateComponent = errors.New("duplicate structural component")
