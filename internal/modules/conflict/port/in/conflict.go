package in

import (
	"context"

	"babylog/internal/modules/conflict/dto"
)

type Usecase interface {
	Evaluate(ctx context.Context, input dto.EvaluateInput) (dto.EvaluateOutput, error)
}
