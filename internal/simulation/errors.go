package simulation

import "errors"

// ErrNonPositiveContribution is returned when the monthly contribution is
// zero or negative.
var ErrNonPositiveContribution = errors.New("monthly investment must be positive")

// ErrUnsortedSeries is returned when the risk series is not strictly
// increasing by date.
var ErrUnsortedSeries = errors.New("risk series dates are not strictly increasing")
