package usecase

import (
	"context"

	"babylog/internal/modules/conflict/domain"
	"babylog/internal/modules/conflict/dto"
	conflictin "babylog/internal/modules/conflict/port/in"
	"babylog/internal/modules/conflict/service"
)

type Interactor struct {
	svc *service.Evaluator
}

func NewInteractor(svc *service.Evaluator) conflictin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Evaluate(ctx context.Context, input dto.EvaluateInput) (dto.EvaluateOutput, error) {
	conflicts, err := i.svc.Evaluate(ctx, input.BabyID, input.Kind, input.StartTime, input.EndTime, input.ExcludeID)
	if err != nil {
		return dto.EvaluateOutput{}, err
	}
	out := dto.EvaluateOutput{Conflicts: make([]dto.ConflictOutput, 0, len(conflicts))}
	for _, c := range conflicts {
		out.Conflicts = append(out.Conflicts, toConflictOutput(c))
	}
	return out, nil
}

func toConflictOutput(c domain.Conflict) dto.ConflictOutput {
	activities := make([]dto.ActivityOutput, 0, len(c.Activities))
	for _, a := range c.Activities {
		activities = append(activities, dto.ActivityOutput{ID: a.ID, Kind: a.Kind, StartTime: a.StartTime, Description: a.Description})
	}
	return dto.ConflictOutput{
		Kind:        string(c.Kind),
		Activities:  activities,
		Overridable: c.Overridable,
		Retroactive: c.Retroactive,
		Message:     c.Message,
	}
}
