package gamification

import (
	"log"
	"math"

	"github.com/studycore/backend/internal/models"
)

// QuizPassThreshold is the minimum score ratio for a quiz to pay XP.
const QuizPassThreshold = 0.6

// EvaluationHighGrade is the grade boundary between the two evaluation tiers.
const EvaluationHighGrade = 7.0

// flashcardBatchSize is the number of correct cards per paid batch.
const flashcardBatchSize = 10

// DefaultXPConfig returns the compiled-in XP amounts used until an admin
// overwrites the stored config.
func DefaultXPConfig() models.XPConfig {
	return models.XPConfig{
		QuizEasy:        50,
		QuizMedium:      75,
		QuizHard:        100,
		FlashcardBatch:  30,
		GuideCompletion: 50,
		EvaluationHigh:  100,
		EvaluationLow:   50,
		FreezeThreshold: 500,
	}
}

// XPForActivity returns the undiscounted XP an activity pays. Unrecognized
// activity types pay 0; they are logged, never an error.
func XPForActivity(activityType models.ActivityType, p models.ActivityPayload, cfg models.XPConfig) int {
	switch activityType {
	case models.ActivityQuizCompleted:
		return quizXP(p, cfg)
	case models.ActivityFlashcardsReviewed:
		if p.CorrectCards < flashcardBatchSize {
			return 0
		}
		return (p.CorrectCards / flashcardBatchSize) * cfg.FlashcardBatch
	case models.ActivityGuideCompleted:
		return cfg.GuideCompletion
	case models.ActivityEvaluationSubmitted:
		switch {
		case p.Grade >= EvaluationHighGrade:
			return cfg.EvaluationHigh
		case p.Grade > 0:
			return cfg.EvaluationLow
		default:
			return 0
		}
	default:
		log.Printf("[gamification] unrecognized activity type %q, awarding 0 XP", activityType)
		return 0
	}
}

func quizXP(p models.ActivityPayload, cfg models.XPConfig) int {
	if p.Total <= 0 {
		return 0
	}
	if float64(p.Score)/float64(p.Total) < QuizPassThreshold {
		return 0
	}
	switch p.Difficulty {
	case "easy":
		return cfg.QuizEasy
	case "hard":
		return cfg.QuizHard
	default:
		// Unknown difficulty pays the medium amount: the quiz itself was
		// passed, only the tier label is unrecognized.
		return cfg.QuizMedium
	}
}

// ApplyMultiplier scales an XP amount by the weekly bonus multiplier,
// rounding to the nearest integer.
func ApplyMultiplier(xp int, multiplier float64) int {
	if multiplier <= 1.0 {
		return xp
	}
	return int(math.Round(float64(xp) * multiplier))
}

// ── Levels ──────────────────────────────────────────────────

// levelTier is a band of levels sharing an XP-per-level rate and a title.
// floorXP is the cumulative XP at which the band begins; a band with
// levels == 0 is unbounded.
type levelTier struct {
	title      string
	startLevel int
	levels     int
	xpPerLevel int64
	floorXP    int64
}

var levelTiers = []levelTier{
	{title: "Novice", startLevel: 1, levels: 5, xpPerLevel: 100, floorXP: 0},
	{title: "Apprentice", startLevel: 6, levels: 5, xpPerLevel: 100, floorXP: 500},
	{title: "Scholar", startLevel: 11, levels: 10, xpPerLevel: 300, floorXP: 1000},
	{title: "Expert", startLevel: 21, levels: 15, xpPerLevel: 500, floorXP: 4000},
	{title: "Master", startLevel: 36, levels: 0, xpPerLevel: 750, floorXP: 11500},
}

// LevelForXP derives level, title, and XP remaining to the next level from
// cumulative XP. Always recomputed from the total; never incremented, so
// stored levels cannot drift. A band changes only when totalXP strictly
// exceeds its last covered XP value.
func LevelForXP(totalXP int64) (level int, title string, xpToNext int64) {
	if totalXP < 0 {
		totalXP = 0
	}
	for _, tier := range levelTiers {
		span := tier.xpPerLevel * int64(tier.levels)
		if tier.levels != 0 && totalXP >= tier.floorXP+span {
			continue
		}
		within := int((totalXP - tier.floorXP) / tier.xpPerLevel)
		level = tier.startLevel + within
		title = tier.title
		nextAt := tier.floorXP + int64(within+1)*tier.xpPerLevel
		xpToNext = nextAt - totalXP
		return level, title, xpToNext
	}
	// Unreachable: the last tier is unbounded.
	last := levelTiers[len(levelTiers)-1]
	return last.startLevel, last.title, last.xpPerLevel
}
