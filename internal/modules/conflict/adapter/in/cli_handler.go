package in

import (
	"context"
	"time"

	conflictdto "babylog/internal/modules/conflict/dto"
	conflictin "babylog/internal/modules/conflict/port/in"
)

type CLIHandler struct {
	usecase conflictin.Usecase
}

func NewCLIHandler(usecase conflictin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Check(ctx context.Context, babyID, kind string, start, end time.Time) (conflictdto.EvaluateOutput, error) {
	return h.usecase.Evaluate(ctx, conflictdto.EvaluateInput{BabyID: babyID, Kind: kind, StartTime: start, EndTime: end})
}
