package domain

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindActive  Kind = "active_conflict"
	KindLogical Kind = "logical_conflict"
)

// OpenSession is the evaluator's view of a running session.
type OpenSession struct {
	ID        string
	Kind      string
	StartTime time.Time
}

// Proposal is the window being checked. A zero StartTime means now; a zero
// EndTime means the activity stays open.
type Proposal struct {
	Kind      string
	StartTime time.Time
	EndTime   time.Time
}

type ConflictingActivity struct {
	ID          string
	Kind        string
	StartTime   time.Time
	Description string
}

type Conflict struct {
	Kind        Kind
	Activities  []ConflictingActivity
	Overridable bool
	Retroactive bool
	Message     string
}

// Evaluate classifies the proposal against the sessions open now. The
// returned slice is empty when the action may proceed.
func Evaluate(open []OpenSession, p Proposal, now time.Time) []Conflict {
	start := p.StartTime
	if start.IsZero() {
		start = now
	}
	past := inPast(start, now)
	overlaps := func(s OpenSession) bool {
		if !p.EndTime.IsZero() {
			return s.StartTime.Before(p.EndTime)
		}
		return !s.StartTime.After(start)
	}

	var conflicts []Conflict
	// A known end makes the proposal a completed entry, not a second timer.
	if SupportsSession(p.Kind) && p.Kind != "pumping" && p.EndTime.IsZero() {
		if s, ok := first(open, func(s OpenSession) bool {
			return s.Kind != p.Kind && s.Kind != "pumping" && overlaps(s)
		}); ok {
			conflicts = append(conflicts, Conflict{
				Kind:       KindActive,
				Activities: []ConflictingActivity{describe(s)},
				Message:    fmt.Sprintf("a %s session is running since %s; stop it before starting %s", s.Kind, clockTime(s.StartTime), p.Kind),
			})
		}
	}
	if len(conflicts) == 0 {
		if matched := filter(open, func(s OpenSession) bool {
			return Excludes(p.Kind, s.Kind) && overlaps(s)
		}); len(matched) > 0 {
			conflicts = append(conflicts, Conflict{
				Kind:        KindLogical,
				Activities:  matched,
				Overridable: true,
				Message:     fmt.Sprintf("%s overlaps %s", p.Kind, joinDescriptions(matched)),
			})
		}
	}
	// Every excluded session open now is reported for a past proposal, even
	// one that began after the proposed window.
	if past {
		if matched := filter(open, func(s OpenSession) bool {
			return Excludes(p.Kind, s.Kind)
		}); len(matched) > 0 {
			conflicts = append(conflicts, Conflict{
				Kind:        KindLogical,
				Activities:  matched,
				Overridable: true,
				Retroactive: true,
				Message:     fmt.Sprintf("%s was already running at %s", joinDescriptions(matched), clockTime(start)),
			})
		}
	}
	return conflicts
}

// inPast compares at whole-second resolution so that a start supplied as
// "now" by the caller is not treated as a backdated entry.
func inPast(start, now time.Time) bool {
	return now.Sub(start) >= time.Second
}

func first(open []OpenSession, keep func(OpenSession) bool) (OpenSession, bool) {
	for _, s := range open {
		if keep(s) {
			return s, true
		}
	}
	return OpenSession{}, false
}

func filter(open []OpenSession, keep func(OpenSession) bool) []ConflictingActivity {
	var out []ConflictingActivity
	for _, s := range open {
		if keep(s) {
			out = append(out, describe(s))
		}
	}
	return out
}

func describe(s OpenSession) ConflictingActivity {
	return ConflictingActivity{
		ID:          s.ID,
		Kind:        s.Kind,
		StartTime:   s.StartTime,
		Description: fmt.Sprintf("%s since %s", s.Kind, clockTime(s.StartTime)),
	}
}

func joinDescriptions(activities []ConflictingActivity) string {
	parts := make([]string, 0, len(activities))
	for _, a := range activities {
		parts = append(parts, a.Description)
	}
	return strings.Join(parts, ", ")
}

func clockTime(t time.Time) string {
	return t.Format("15:04")
}
