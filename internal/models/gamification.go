package models

import "time"

// ── Activity Types ────────────────────────────────────────

type ActivityType string

const (
	ActivityQuizCompleted       ActivityType = "quiz_completed"
	ActivityFlashcardsReviewed  ActivityType = "flashcards_reviewed"
	ActivityGuideCompleted      ActivityType = "study_guide_completed"
	ActivityEvaluationSubmitted ActivityType = "evaluation_submitted"
)

// ActivityCategory is the weekly-consistency bucket an activity counts toward.
type ActivityCategory string

const (
	CategoryFlashcards ActivityCategory = "flashcards"
	CategoryQuiz       ActivityCategory = "quiz"
	CategoryEvaluation ActivityCategory = "evaluation"
	CategoryGuide      ActivityCategory = "guide"
)

// ActivityPayload carries the per-type fields of a logged activity.
// Fields irrelevant to the type are left zero.
type ActivityPayload struct {
	Difficulty   string  `json:"difficulty,omitempty"`    // quiz: easy|medium|hard
	Score        int     `json:"score,omitempty"`         // quiz
	Total        int     `json:"total,omitempty"`         // quiz
	CorrectCards int     `json:"correct_cards,omitempty"` // flashcards
	Grade        float64 `json:"grade,omitempty"`         // evaluation: 0-10
}

// ── Core Gamification Structs ─────────────────────────────

type StreakState struct {
	CurrentCount     int        `json:"current_count"`
	LongestCount     int        `json:"longest_count"`
	LastActivityDay  *time.Time `json:"last_activity_day"` // a streak day, not a timestamp
	FreezesAvailable int        `json:"freezes_available"`
}

type WeeklyConsistency struct {
	Flashcards      bool       `json:"flashcards"`
	Quiz            bool       `json:"quiz"`
	Evaluation      bool       `json:"evaluation"`
	Guide           bool       `json:"guide"`
	WeekStart       *time.Time `json:"week_start"` // streak-day anchor of the current week
	BonusActive     bool       `json:"bonus_active"`
	BonusMultiplier float64    `json:"bonus_multiplier"` // 1.0 when inactive
	LastBonusWeek   *time.Time `json:"last_bonus_week,omitempty"`
}

type ActivityCounters struct {
	FlashcardsReviewed    int64 `json:"flashcards_reviewed"`
	QuizzesCompleted      int64 `json:"quizzes_completed"`
	QuizzesPassed         int64 `json:"quizzes_passed"`
	EvaluationsSubmitted  int64 `json:"evaluations_submitted"`
	GuidesCompleted       int64 `json:"guides_completed"`
	WeeklyBonusCount      int64 `json:"weekly_bonus_count"`
	ConsecutiveBonusWeeks int64 `json:"consecutive_bonus_weeks"`
	NightActivities       int64 `json:"night_activities"`
	WeekendActivities     int64 `json:"weekend_activities"`
}

// SpecialQuest is a single-instance, time-boxed challenge per user/course.
// Completed is terminal: once set it is never cleared or re-awarded.
type SpecialQuest struct {
	StartedAt *time.Time `json:"started_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Readiness int        `json:"readiness"` // 0-100
	Completed bool       `json:"completed"`
}

type UserStats struct {
	UserID        string            `json:"user_id"`
	Email         string            `json:"email"`
	CourseID      string            `json:"course_id"`
	TotalXP       int64             `json:"total_xp"`
	Level         int               `json:"level"`
	LevelTitle    string            `json:"level_title"`
	XPToNextLevel int64             `json:"xp_to_next_level"`
	Streak        StreakState       `json:"streak"`
	Weekly        WeeklyConsistency `json:"weekly_consistency"`
	Activities    ActivityCounters  `json:"activities"`
	Quest         SpecialQuest      `json:"special_quest"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ── Badges ────────────────────────────────────────────────

type BadgeCategory string

const (
	BadgeCategoryStreak      BadgeCategory = "streak"
	BadgeCategoryXP          BadgeCategory = "xp"
	BadgeCategoryActivity    BadgeCategory = "activity"
	BadgeCategoryConsistency BadgeCategory = "consistency"
	BadgeCategorySpecial     BadgeCategory = "special"
)

type BadgeDefinition struct {
	BadgeID     string           `json:"badge_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    BadgeCategory    `json:"category"`
	Criteria    map[string]int64 `json:"criteria"`
	Points      int              `json:"points"`
	Active      bool             `json:"active"`
}

type UserBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// ── XP Configuration ──────────────────────────────────────

// XPConfig is the admin-editable table of flat XP amounts.
type XPConfig struct {
	QuizEasy        int   `json:"quiz_easy"`
	QuizMedium      int   `json:"quiz_medium"`
	QuizHard        int   `json:"quiz_hard"`
	FlashcardBatch  int   `json:"flashcard_batch"` // per complete batch of 10 correct cards
	GuideCompletion int   `json:"guide_completion"`
	EvaluationHigh  int   `json:"evaluation_high"`  // grade >= 7
	EvaluationLow   int   `json:"evaluation_low"`   // 0 < grade < 7
	FreezeThreshold int64 `json:"freeze_threshold"` // one freeze earned per multiple crossed
}

// ── Maintenance ───────────────────────────────────────────

const (
	MaintenanceFreezeConsumed = "freeze_consumed"
	MaintenanceStreakBroken   = "streak_broken"
)

type MaintenanceAudit struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Decision     string    `json:"decision"`
	GapDays      int       `json:"gap_days"`
	FreezesAfter int       `json:"freezes_after"`
	RunAt        time.Time `json:"run_at"`
}

type MaintenanceReport struct {
	UsersProcessed int `json:"users_processed"`
	FreezesApplied int `json:"freezes_applied"`
	StreaksBroken  int `json:"streaks_broken"`
	Errors         int `json:"errors"`
}

// ── Request Types ─────────────────────────────────────────

type LogActivityRequest struct {
	UserID       string          `json:"user_id"`
	Email        string          `json:"email"`
	CourseID     string          `json:"course_id"`
	ActivityType ActivityType    `json:"activity_type"`
	Payload      ActivityPayload `json:"payload"`
}

type SeedBadgesRequest struct {
	Badges []BadgeDefinition `json:"badges"`
}

// ── Response Types ────────────────────────────────────────

type ActivityResult struct {
	XPAwarded           int      `json:"xp_awarded"`
	NewTotalXP          int64    `json:"new_total_xp"`
	LevelUp             bool     `json:"level_up"`
	NewLevel            int      `json:"new_level,omitempty"`
	NewLevelTitle       string   `json:"new_level_title,omitempty"`
	StreakMaintained    bool     `json:"streak_maintained"`
	CurrentStreak       int      `json:"current_streak"`
	BonusMultiplier     float64  `json:"bonus_multiplier"`
	NewlyUnlockedBadges []string `json:"newly_unlocked_badges"`
}

type UserBadgesResponse struct {
	Badges []UserBadge `json:"badges"`
	Total  int         `json:"total"`
}

type SeedBadgesResponse struct {
	CountWritten int `json:"count_written"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
