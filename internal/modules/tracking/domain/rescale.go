package domain

import (
	"fmt"

	apperrors "babylog/internal/platform/errors"
)

// Rescale scales every bucket by newTotal/oldTotal, truncating each result.
// A non-positive oldTotal leaves the buckets unchanged: there is no ratio to
// apply.
func Rescale(b Buckets, oldTotal, newTotal int64) (Buckets, error) {
	if newTotal <= 0 {
		return b, fmt.Errorf("%w: adjusted duration must be positive", apperrors.ErrInvalidTimeRange)
	}
	if oldTotal <= 0 {
		return b, nil
	}
	scale := func(v int64) int64 { return v * newTotal / oldTotal }
	return Buckets{
		Left:    scale(b.Left),
		Right:   scale(b.Right),
		Paused:  scale(b.Paused),
		Seconds: scale(b.Seconds),
	}, nil
}
