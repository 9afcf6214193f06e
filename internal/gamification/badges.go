package gamification

import (
	"fmt"
	"log"

	"github.com/studycore/backend/internal/models"
)

// criteriaKeys is the closed set of recognized criterion keys per badge
// category. Seeding a definition with a key outside this set is a
// configuration error, not a runtime surprise.
var criteriaKeys = map[models.BadgeCategory]map[string]bool{
	models.BadgeCategoryStreak: {
		"streak_days":    true,
		"longest_streak": true,
	},
	models.BadgeCategoryXP: {
		"total_xp": true,
	},
	models.BadgeCategoryActivity: {
		"flashcards_reviewed":   true,
		"quizzes_completed":     true,
		"quizzes_passed":        true,
		"evaluations_submitted": true,
		"guides_completed":      true,
	},
	models.BadgeCategoryConsistency: {
		"weekly_bonus_count": true,
		"consecutive_weeks":  true,
	},
	models.BadgeCategorySpecial: {
		"night_activities":   true,
		"weekend_activities": true,
		"quest_completed":    true,
	},
}

// ValidateBadgeDefinition rejects definitions with an unknown category, an
// empty criteria map, or criterion keys outside the category's closed set.
func ValidateBadgeDefinition(def models.BadgeDefinition) error {
	if def.BadgeID == "" {
		return fmt.Errorf("%w: badge definition missing badge_id", ErrInvalid)
	}
	allowed, ok := criteriaKeys[def.Category]
	if !ok {
		return fmt.Errorf("%w: badge %q has unknown category %q", ErrInvalid, def.BadgeID, def.Category)
	}
	if len(def.Criteria) == 0 {
		return fmt.Errorf("%w: badge %q has no criteria", ErrInvalid, def.BadgeID)
	}
	for key := range def.Criteria {
		if !allowed[key] {
			return fmt.Errorf("%w: badge %q has unrecognized %s criterion %q", ErrInvalid, def.BadgeID, def.Category, key)
		}
	}
	return nil
}

// EvaluateBadges returns the active, not-yet-earned badges whose criteria
// the stats snapshot satisfies. Evaluation never writes; unlocking is the
// store's transactional concern.
func EvaluateBadges(stats *models.UserStats, catalog []models.BadgeDefinition, earned map[string]bool) []models.BadgeDefinition {
	var unlocked []models.BadgeDefinition
	for _, def := range catalog {
		if !def.Active || earned[def.BadgeID] {
			continue
		}
		if badgeMet(stats, def) {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}

// badgeMet evaluates one definition against the snapshot. All listed
// criteria must be met simultaneously; the check rejects as soon as any one
// threshold is unmet. A criterion this engine cannot evaluate is logged and
// treated as unmet, never as an error.
func badgeMet(stats *models.UserStats, def models.BadgeDefinition) bool {
	for key, threshold := range def.Criteria {
		value, ok := criterionValue(stats, def.Category, key)
		if !ok {
			log.Printf("[gamification] debug: badge %q criterion %q not evaluable, treating as unmet", def.BadgeID, key)
			return false
		}
		if value < threshold {
			return false
		}
	}
	return len(def.Criteria) > 0
}

func criterionValue(stats *models.UserStats, category models.BadgeCategory, key string) (int64, bool) {
	switch category {
	case models.BadgeCategoryStreak:
		switch key {
		case "streak_days":
			return int64(stats.Streak.CurrentCount), true
		case "longest_streak":
			return int64(stats.Streak.LongestCount), true
		}
	case models.BadgeCategoryXP:
		if key == "total_xp" {
			return stats.TotalXP, true
		}
	case models.BadgeCategoryActivity:
		switch key {
		case "flashcards_reviewed":
			return stats.Activities.FlashcardsReviewed, true
		case "quizzes_completed":
			return stats.Activities.QuizzesCompleted, true
		case "quizzes_passed":
			return stats.Activities.QuizzesPassed, true
		case "evaluations_submitted":
			return stats.Activities.EvaluationsSubmitted, true
		case "guides_completed":
			return stats.Activities.GuidesCompleted, true
		}
	case models.BadgeCategoryConsistency:
		switch key {
		case "weekly_bonus_count":
			return stats.Activities.WeeklyBonusCount, true
		case "consecutive_weeks":
			return stats.Activities.ConsecutiveBonusWeeks, true
		}
	case models.BadgeCategorySpecial:
		switch key {
		case "night_activities":
			return stats.Activities.NightActivities, true
		case "weekend_activities":
			return stats.Activities.WeekendActivities, true
		case "quest_completed":
			if stats.Quest.Completed {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}
