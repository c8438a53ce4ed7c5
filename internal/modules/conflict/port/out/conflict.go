package out

import (
	"context"

	"babylog/internal/modules/conflict/domain"
)

// OpenSessionSource lists every session currently open for a baby.
type OpenSessionSource interface {
	ListOpen(ctx context.Context, babyID string) ([]domain.OpenSession, error)
}
