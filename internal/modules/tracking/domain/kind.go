package domain

import (
	"fmt"

	apperrors "babylog/internal/platform/errors"
)

type Kind string

const (
	KindNursing  Kind = "nursing"
	KindPumping  Kind = "pumping"
	KindSleep    Kind = "sleep"
	KindBottle   Kind = "bottle"
	KindDiaper   Kind = "diaper"
	KindActivity Kind = "activity"
)

func (k Kind) Validate() error {
	switch k {
	case KindNursing, KindPumping, KindSleep, KindBottle, KindDiaper, KindActivity:
		return nil
	default:
		return fmt.Errorf("%w: unsupported activity kind %q", apperrors.ErrInvalidInput, string(k))
	}
}

// SupportsSession reports whether k is tracked with a resumable timer.
// All other kinds are recorded as complete entries.
func (k Kind) SupportsSession() bool {
	switch k {
	case KindNursing, KindPumping, KindSleep:
		return true
	default:
		return false
	}
}

func SessionKinds() []Kind {
	return []Kind{KindNursing, KindPumping, KindSleep}
}
