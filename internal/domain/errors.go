package domain

import "errors"

var (
	// ErrEmptyHistory means the price feed returned no usable series for the
	// requested training window. Training fails rather than fitting a
	// degenerate model.
	ErrEmptyHistory = errors.New("empty price history")

	// ErrInvalidHorizon means the requested forecast horizon is zero or
	// negative. Rejected before any artifact lookup.
	ErrInvalidHorizon = errors.New("forecast horizon must be a positive number of days")

	// ErrInvalidTicker means the ticker symbol is missing or blank.
	ErrInvalidTicker = errors.New("ticker symbol must not be empty")
)
