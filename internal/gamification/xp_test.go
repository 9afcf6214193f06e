package gamification

import (
	"testing"

	"github.com/studycore/backend/internal/models"
)

func TestXPForActivity(t *testing.T) {
	cfg := DefaultXPConfig()

	tests := []struct {
		name    string
		aType   models.ActivityType
		payload models.ActivityPayload
		want    int
	}{
		{"quiz passed at exact threshold", models.ActivityQuizCompleted, models.ActivityPayload{Difficulty: "medium", Score: 6, Total: 10}, 75},
		{"quiz just below threshold", models.ActivityQuizCompleted, models.ActivityPayload{Difficulty: "medium", Score: 5, Total: 10}, 0},
		{"quiz easy", models.ActivityQuizCompleted, models.ActivityPayload{Difficulty: "easy", Score: 10, Total: 10}, 50},
		{"quiz hard", models.ActivityQuizCompleted, models.ActivityPayload{Difficulty: "hard", Score: 8, Total: 10}, 100},
		{"quiz unknown difficulty pays medium", models.ActivityQuizCompleted, models.ActivityPayload{Difficulty: "brutal", Score: 8, Total: 10}, 75},
		{"quiz zero total", models.ActivityQuizCompleted, models.ActivityPayload{Difficulty: "easy", Score: 5, Total: 0}, 0},
		{"flashcards below batch", models.ActivityFlashcardsReviewed, models.ActivityPayload{CorrectCards: 9}, 0},
		{"flashcards one batch", models.ActivityFlashcardsReviewed, models.ActivityPayload{CorrectCards: 10}, 30},
		{"flashcards partial second batch", models.ActivityFlashcardsReviewed, models.ActivityPayload{CorrectCards: 25}, 60},
		{"guide completed", models.ActivityGuideCompleted, models.ActivityPayload{}, 50},
		{"evaluation high grade", models.ActivityEvaluationSubmitted, models.ActivityPayload{Grade: 7.0}, 100},
		{"evaluation low grade", models.ActivityEvaluationSubmitted, models.ActivityPayload{Grade: 6.9}, 50},
		{"evaluation zero grade", models.ActivityEvaluationSubmitted, models.ActivityPayload{Grade: 0}, 0},
		{"unrecognized type", models.ActivityType("mystery"), models.ActivityPayload{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := XPForActivity(tt.aType, tt.payload, cfg)
			if got != tt.want {
				t.Errorf("XPForActivity(%s) = %d, want %d", tt.aType, got, tt.want)
			}
		})
	}
}

func TestApplyMultiplier(t *testing.T) {
	tests := []struct {
		xp         int
		multiplier float64
		want       int
	}{
		{50, 1.5, 75},
		{75, 1.5, 113}, // 112.5 rounds up
		{100, 1.0, 100},
		{0, 1.5, 0},
	}

	for _, tt := range tests {
		got := ApplyMultiplier(tt.xp, tt.multiplier)
		if got != tt.want {
			t.Errorf("ApplyMultiplier(%d, %v) = %d, want %d", tt.xp, tt.multiplier, got, tt.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		totalXP    int64
		wantLevel  int
		wantTitle  string
		wantToNext int64
	}{
		{0, 1, "Novice", 100},
		{99, 1, "Novice", 1},
		{100, 2, "Novice", 100},
		{499, 5, "Novice", 1},
		{500, 6, "Apprentice", 100},
		{999, 10, "Apprentice", 1},
		{1000, 11, "Scholar", 300},
		{3999, 20, "Scholar", 1},
		{4000, 21, "Expert", 500},
		{11499, 35, "Expert", 1},
		{11500, 36, "Master", 750},
		{100000, 154, "Master", 0 /* ignored */},
	}

	for _, tt := range tests {
		level, title, toNext := LevelForXP(tt.totalXP)
		if level != tt.wantLevel || title != tt.wantTitle {
			t.Errorf("LevelForXP(%d) = (%d, %s), want (%d, %s)", tt.totalXP, level, title, tt.wantLevel, tt.wantTitle)
		}
		if tt.totalXP <= 11500 && toNext != tt.wantToNext {
			t.Errorf("LevelForXP(%d) toNext = %d, want %d", tt.totalXP, toNext, tt.wantToNext)
		}
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := 0
	for xp := int64(0); xp <= 20000; xp += 37 {
		level, _, toNext := LevelForXP(xp)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at xp %d", prev, level, xp)
		}
		if toNext <= 0 {
			t.Fatalf("xpToNext must be positive, got %d at xp %d", toNext, xp)
		}
		prev = level
	}
}

func TestLevelForXPNegative(t *testing.T) {
	level, title, _ := LevelForXP(-50)
	if level != 1 || title != "Novice" {
		t.Errorf("negative xp should clamp to level 1 Novice, got (%d, %s)", level, title)
	}
}
