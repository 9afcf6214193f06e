package gamification

import (
	"time"

	"github.com/studycore/backend/internal/models"
)

// BonusMultiplier is the XP multiplier while the weekly consistency bonus
// is active.
const BonusMultiplier = 1.5

// CategoryForActivity maps an activity type to its weekly-consistency
// category. Unrecognized types have no category.
func CategoryForActivity(t models.ActivityType) (models.ActivityCategory, bool) {
	switch t {
	case models.ActivityFlashcardsReviewed:
		return models.CategoryFlashcards, true
	case models.ActivityQuizCompleted:
		return models.CategoryQuiz, true
	case models.ActivityEvaluationSubmitted:
		return models.CategoryEvaluation, true
	case models.ActivityGuideCompleted:
		return models.CategoryGuide, true
	default:
		return "", false
	}
}

// ApplyConsistency records one activity's category for the week anchored at
// weekStart. A stale week is reset lazily before the update; no background
// sweep touches these flags. Returns true when this update activated the
// bonus. The caller reads the multiplier before calling, so the activating
// activity itself is never multiplied.
func ApplyConsistency(w *models.WeeklyConsistency, counters *models.ActivityCounters, cat models.ActivityCategory, weekStart time.Time) bool {
	if w.WeekStart == nil || !weekStart.Equal(*w.WeekStart) {
		w.Flashcards = false
		w.Quiz = false
		w.Evaluation = false
		w.Guide = false
		w.BonusActive = false
		w.BonusMultiplier = 1.0
		ws := weekStart
		w.WeekStart = &ws
	}

	switch cat {
	case models.CategoryFlashcards:
		w.Flashcards = true
	case models.CategoryQuiz:
		w.Quiz = true
	case models.CategoryEvaluation:
		w.Evaluation = true
	case models.CategoryGuide:
		w.Guide = true
	}

	if w.Flashcards && w.Quiz && w.Evaluation && w.Guide && !w.BonusActive {
		w.BonusActive = true
		w.BonusMultiplier = BonusMultiplier
		counters.WeeklyBonusCount++
		if w.LastBonusWeek != nil && w.LastBonusWeek.Equal(weekStart.AddDate(0, 0, -7)) {
			counters.ConsecutiveBonusWeeks++
		} else {
			counters.ConsecutiveBonusWeeks = 1
		}
		lb := weekStart
		w.LastBonusWeek = &lb
		return true
	}
	return false
}

// ActiveMultiplier returns the multiplier to apply to an XP award happening
// in the week anchored at weekStart. A bonus from an earlier week is stale
// and does not carry over.
func ActiveMultiplier(w models.WeeklyConsistency, weekStart time.Time) float64 {
	if !w.BonusActive || w.WeekStart == nil || !weekStart.Equal(*w.WeekStart) {
		return 1.0
	}
	return w.BonusMultiplier
}
