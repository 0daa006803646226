// Package escalation promotes unresolved complaints through severity levels
// as they age.
package escalation

import (
	"time"

	"civicvoice/backend/internal/config"
)

var ladder = []struct {
	level int
	after time.Duration
}{
	{level: 3, after: config.EscalationLevel3After},
	{level: 2, after: config.EscalationLevel2After},
	{level: 1, after: config.EscalationLevel1After},
}

// TargetLevel returns the level a complaint created at createdAt should hold
// at now, and whether that is higher than current. Rungs are checked longest
// first so a complaint can jump several levels at once. Levels never go down.
func TargetLevel(createdAt, now time.Time, current int) (int, bool) {
	for _, rung := range ladder {
		if !createdAt.After(now.Add(-rung.after)) && current < rung.level {
			return rung.level, true
		}
	}
	return current, false
}
