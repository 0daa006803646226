package models

import "time"

// SweepRun summarises one escalation sweep. The latest run is kept as a
// watermark so operators can see when the ladder last moved.
type SweepRun struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Scanned    int       `json:"scanned"`
	Promoted   int       `json:"promoted"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}

// Duration is the wall time the sweep took.
func (r SweepRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
