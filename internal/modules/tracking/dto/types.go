package dto

import "time"

type StartInput struct {
	BabyID    string
	Kind      string
	StartTime time.Time
	// Status seeds the timer: "left"/"right"/"paused" for nursing,
	// "running"/"paused" for pumping. Empty picks the kind's default.
	Status        string
	Notes         string
	Fields        map[string]string
	AllowOverride bool
}

type SessionRef struct {
	BabyID string
	Kind   string
}

type TransitionInput struct {
	BabyID string
	Kind   string
	Status string
}

type AdjustStartInput struct {
	BabyID        string
	Kind          string
	StartTime     time.Time
	Status        string
	AllowOverride bool
}

type RebalanceInput struct {
	BabyID      string
	LeftSeconds int64
}

type FinalizeInput struct {
	BabyID  string
	Kind    string
	EndTime time.Time
	Notes   string
	Fields  map[string]string
}

type LogEntryInput struct {
	BabyID        string
	Kind          string
	StartTime     time.Time
	EndTime       time.Time
	Notes         string
	Fields        map[string]string
	AllowOverride bool
}

type TimelineInput struct {
	BabyID string
	From   time.Time
	To     time.Time
}

type ExportInput struct {
	BabyID string
	Day    time.Time
}

type ActiveSessionOutput struct {
	ID               string
	BabyID           string
	Kind             string
	Status           string
	Running          bool
	StartTime        time.Time
	LastCheckpointAt time.Time
	LeftSeconds      int64
	RightSeconds     int64
	PausedSeconds    int64
	Seconds          int64
	TotalSeconds     int64
	Notes            string
	Fields           map[string]string
}

// StartOutput carries the advisory conflicts that were overridden, if any.
type StartOutput struct {
	Session  ActiveSessionOutput
	Warnings []string
}

type RecordOutput struct {
	ID            string
	BabyID        string
	Kind          string
	StartTime     time.Time
	EndTime       time.Time
	LeftSeconds   int64
	RightSeconds  int64
	PausedSeconds int64
	Seconds       int64
	Notes         string
	Fields        map[string]string
}

type LogEntryOutput struct {
	Record   RecordOutput
	Warnings []string
}

type ExportOutput struct {
	Path    string
	Entries int
}
