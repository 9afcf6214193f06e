package gamification

import (
	"testing"
	"time"

	"github.com/studycore/backend/internal/models"
)

func dayPtr(d time.Time) *time.Time {
	return &d
}

func TestAdvanceStreak(t *testing.T) {
	today := day(2026, 3, 10)

	tests := []struct {
		name        string
		streak      models.StreakState
		wantOutcome StreakOutcome
		wantCount   int
		wantLongest int
	}{
		{
			name:        "first ever activity",
			streak:      models.StreakState{},
			wantOutcome: StreakStarted,
			wantCount:   1,
			wantLongest: 1,
		},
		{
			name:        "second activity same day",
			streak:      models.StreakState{CurrentCount: 5, LongestCount: 8, LastActivityDay: dayPtr(today)},
			wantOutcome: StreakMaintained,
			wantCount:   5,
			wantLongest: 8,
		},
		{
			name:        "next day increments",
			streak:      models.StreakState{CurrentCount: 7, LongestCount: 7, LastActivityDay: dayPtr(day(2026, 3, 9))},
			wantOutcome: StreakIncremented,
			wantCount:   8,
			wantLongest: 8,
		},
		{
			name:        "two missed days restart at one",
			streak:      models.StreakState{CurrentCount: 10, LongestCount: 10, LastActivityDay: dayPtr(day(2026, 3, 7))},
			wantOutcome: StreakBroken,
			wantCount:   1,
			wantLongest: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := AdvanceStreak(&tt.streak, today)
			if outcome != tt.wantOutcome {
				t.Errorf("outcome = %d, want %d", outcome, tt.wantOutcome)
			}
			if tt.streak.CurrentCount != tt.wantCount {
				t.Errorf("current count = %d, want %d", tt.streak.CurrentCount, tt.wantCount)
			}
			if tt.streak.LongestCount != tt.wantLongest {
				t.Errorf("longest count = %d, want %d", tt.streak.LongestCount, tt.wantLongest)
			}
		})
	}
}

func TestAdvanceStreakDoesNotTouchFreezes(t *testing.T) {
	streak := models.StreakState{
		CurrentCount:     7,
		LongestCount:     7,
		LastActivityDay:  dayPtr(day(2026, 3, 9)),
		FreezesAvailable: 3,
	}
	AdvanceStreak(&streak, day(2026, 3, 10))
	if streak.FreezesAvailable != 3 {
		t.Errorf("live streak advance must not spend freezes, have %d want 3", streak.FreezesAvailable)
	}
}

func TestFreezesEarned(t *testing.T) {
	tests := []struct {
		name      string
		old, new  int64
		threshold int64
		want      int
	}{
		{"crossing one threshold", 450, 500, 500, 1},
		{"just below", 450, 499, 500, 0},
		{"large award crosses two", 0, 1200, 500, 2},
		{"within same band", 500, 999, 500, 0},
		{"no change", 100, 100, 500, 0},
		{"zero threshold", 0, 1000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreezesEarned(tt.old, tt.new, tt.threshold)
			if got != tt.want {
				t.Errorf("FreezesEarned(%d, %d, %d) = %d, want %d", tt.old, tt.new, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestDecideMissedDays(t *testing.T) {
	today := day(2026, 3, 10)

	tests := []struct {
		name    string
		streak  models.StreakState
		want    MaintenanceDecision
		wantGap int
	}{
		{
			name:   "no history",
			streak: models.StreakState{},
			want:   MaintenanceNoAction,
		},
		{
			name:   "already broken",
			streak: models.StreakState{CurrentCount: 0, LastActivityDay: dayPtr(day(2026, 3, 1))},
			want:   MaintenanceNoAction,
		},
		{
			name:    "active yesterday",
			streak:  models.StreakState{CurrentCount: 5, LastActivityDay: dayPtr(day(2026, 3, 9))},
			want:    MaintenanceNoAction,
			wantGap: 1,
		},
		{
			name:    "one missed day with freeze",
			streak:  models.StreakState{CurrentCount: 5, FreezesAvailable: 2, LastActivityDay: dayPtr(day(2026, 3, 8))},
			want:    MaintenanceConsumeFreeze,
			wantGap: 2,
		},
		{
			name:    "one missed day without freeze",
			streak:  models.StreakState{CurrentCount: 5, LastActivityDay: dayPtr(day(2026, 3, 8))},
			want:    MaintenanceBreakStreak,
			wantGap: 2,
		},
		{
			name:    "two missed days break even with freezes",
			streak:  models.StreakState{CurrentCount: 5, FreezesAvailable: 5, LastActivityDay: dayPtr(day(2026, 3, 7))},
			want:    MaintenanceBreakStreak,
			wantGap: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gap := DecideMissedDays(tt.streak, today)
			if got != tt.want {
				t.Errorf("decision = %d, want %d", got, tt.want)
			}
			if gap != tt.wantGap {
				t.Errorf("gap = %d, want %d", gap, tt.wantGap)
			}
		})
	}
}
