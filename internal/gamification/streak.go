package gamification

import (
	"time"

	"github.com/studycore/backend/internal/models"
)

// StreakOutcome describes what a live activity did to the streak.
type StreakOutcome int

const (
	StreakStarted StreakOutcome = iota
	StreakMaintained
	StreakIncremented
	StreakBroken
)

// AdvanceStreak applies a live activity on the given streak day to the
// streak block. The live path only distinguishes gap 0, gap 1, and "too
// late": missed-day freeze handling belongs to the maintenance job, which
// runs before any same-day activity can observe a gap of 2.
//
// Convention on break: only a streak day with activity contributes a count,
// so a live activity after missed days starts a fresh streak of 1.
func AdvanceStreak(s *models.StreakState, day time.Time) StreakOutcome {
	if s.LastActivityDay == nil {
		s.CurrentCount = 1
		recordDay(s, day)
		return StreakStarted
	}

	gap := GapDays(*s.LastActivityDay, day)
	switch {
	case gap <= 0:
		return StreakMaintained
	case gap == 1:
		s.CurrentCount++
		recordDay(s, day)
		return StreakIncremented
	default:
		s.CurrentCount = 1
		recordDay(s, day)
		return StreakBroken
	}
}

// recordDay stores the new last-activity streak day and keeps the longest
// count in sync.
func recordDay(s *models.StreakState, day time.Time) {
	d := day
	s.LastActivityDay = &d
	if s.CurrentCount > s.LongestCount {
		s.LongestCount = s.CurrentCount
	}
}

// FreezesEarned returns how many freeze credits an XP change grants: one per
// multiple of threshold crossed. A single large award can cross several.
func FreezesEarned(oldTotal, newTotal, threshold int64) int {
	if threshold <= 0 || newTotal <= oldTotal {
		return 0
	}
	return int(newTotal/threshold - oldTotal/threshold)
}

// ── Maintenance decisions ───────────────────────────────────

// MaintenanceDecision is the missed-day consequence for one user.
type MaintenanceDecision int

const (
	MaintenanceNoAction MaintenanceDecision = iota
	MaintenanceConsumeFreeze
	MaintenanceBreakStreak
)

// DecideMissedDays evaluates the gap >= 2 branch of the streak machine for
// the nightly job. A freeze covers exactly one missed day (gap 2); larger
// gaps break the streak without spending a freeze. Users with no history or
// an already-broken streak need no action.
func DecideMissedDays(s models.StreakState, today time.Time) (MaintenanceDecision, int) {
	if s.LastActivityDay == nil || s.CurrentCount == 0 {
		return MaintenanceNoAction, 0
	}
	gap := GapDays(*s.LastActivityDay, today)
	if gap < 2 {
		return MaintenanceNoAction, gap
	}
	if gap == 2 && s.FreezesAvailable > 0 {
		return MaintenanceConsumeFreeze, gap
	}
	return MaintenanceBreakStreak, gap
}
