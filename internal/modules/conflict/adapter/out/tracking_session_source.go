package out

import (
	"context"

	"babylog/internal/modules/conflict/domain"
	conflictout "babylog/internal/modules/conflict/port/out"
	trackingin "babylog/internal/modules/tracking/port/in"
)

// TrackingSessionSource reads open sessions through the tracking query port.
type TrackingSessionSource struct {
	query trackingin.Query
}

func NewTrackingSessionSource(query trackingin.Query) conflictout.OpenSessionSource {
	return &TrackingSessionSource{query: query}
}

func (s *TrackingSessionSource) ListOpen(ctx context.Context, babyID string) ([]domain.OpenSession, error) {
	sessions, err := s.query.ListOpen(ctx, babyID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OpenSession, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, domain.OpenSession{ID: session.ID, Kind: session.Kind, StartTime: session.StartTime})
	}
	return out, nil
}
