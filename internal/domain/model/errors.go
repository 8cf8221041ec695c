package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidPeriod = errors.New("invalid period")
)
