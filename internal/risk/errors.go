package risk

import "errors"

// ErrInvalidWindow is returned when a rolling window is too small to produce
// a sample standard deviation.
var ErrInvalidWindow = errors.New("rolling window must be at least 2 observations")

// ErrNonMonotonicDates is returned when the input series is not strictly
// increasing by date.
var ErrNonMonotonicDates = errors.New("observation dates are not strictly increasing")

// ErrNonPositivePrice is returned when an observation carries a price <= 0.
var ErrNonPositivePrice = errors.New("observation price must be positive")

// ErrNonPositiveRatio is returned when an observation carries a valuation
// ratio <= 0 (its logarithm would be undefined).
var ErrNonPositiveRatio = errors.New("observation valuation ratio must be positive")
