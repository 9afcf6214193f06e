package gamification

import "github.com/studycore/backend/internal/models"

// DefaultBadgeCatalog is the seed catalog. Badge IDs are stable; retiring a
// badge means flipping Active off, never deleting the row.
func DefaultBadgeCatalog() []models.BadgeDefinition {
	return []models.BadgeDefinition{
		// Streak
		{BadgeID: "streak_3", Name: "Getting Started", Description: "3-day streak", Category: models.BadgeCategoryStreak, Criteria: map[string]int64{"streak_days": 3}, Points: 10, Active: true},
		{BadgeID: "streak_7", Name: "Week Warrior", Description: "7-day streak", Category: models.BadgeCategoryStreak, Criteria: map[string]int64{"streak_days": 7}, Points: 25, Active: true},
		{BadgeID: "streak_14", Name: "Dedicated", Description: "14-day streak", Category: models.BadgeCategoryStreak, Criteria: map[string]int64{"streak_days": 14}, Points: 50, Active: true},
		{BadgeID: "streak_30", Name: "Monthly Master", Description: "30-day streak", Category: models.BadgeCategoryStreak, Criteria: map[string]int64{"streak_days": 30}, Points: 100, Active: true},
		{BadgeID: "streak_100", Name: "Centurion", Description: "100-day streak", Category: models.BadgeCategoryStreak, Criteria: map[string]int64{"streak_days": 100}, Points: 500, Active: true},
		{BadgeID: "longest_30", Name: "Marathoner", Description: "Reach a longest streak of 30 days", Category: models.BadgeCategoryStreak, Criteria: map[string]int64{"longest_streak": 30}, Points: 100, Active: true},

		// XP
		{BadgeID: "xp_1000", Name: "Rising Star", Description: "Earn 1,000 total XP", Category: models.BadgeCategoryXP, Criteria: map[string]int64{"total_xp": 1000}, Points: 10, Active: true},
		{BadgeID: "xp_10000", Name: "Powerhouse", Description: "Earn 10,000 total XP", Category: models.BadgeCategoryXP, Criteria: map[string]int64{"total_xp": 10000}, Points: 50, Active: true},
		{BadgeID: "xp_50000", Name: "Legend", Description: "Earn 50,000 total XP", Category: models.BadgeCategoryXP, Criteria: map[string]int64{"total_xp": 50000}, Points: 200, Active: true},

		// Activity
		{BadgeID: "flashcards_100", Name: "Card Counter", Description: "Review 100 flashcards", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"flashcards_reviewed": 100}, Points: 25, Active: true},
		{BadgeID: "flashcards_1000", Name: "Memory Machine", Description: "Review 1,000 flashcards", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"flashcards_reviewed": 1000}, Points: 100, Active: true},
		{BadgeID: "quizzes_10", Name: "Quiz Taker", Description: "Complete 10 quizzes", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"quizzes_completed": 10}, Points: 25, Active: true},
		{BadgeID: "quizzes_50", Name: "Quiz Veteran", Description: "Complete 50 quizzes", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"quizzes_completed": 50}, Points: 100, Active: true},
		{BadgeID: "quiz_master", Name: "Quiz Master", Description: "Pass 25 quizzes", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"quizzes_passed": 25}, Points: 75, Active: true},
		{BadgeID: "evaluations_10", Name: "Self Critic", Description: "Submit 10 evaluations", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"evaluations_submitted": 10}, Points: 50, Active: true},
		{BadgeID: "guides_10", Name: "Guided Scholar", Description: "Complete 10 study guides", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"guides_completed": 10}, Points: 50, Active: true},
		{BadgeID: "well_rounded", Name: "Well Rounded", Description: "Pass 10 quizzes and complete 5 guides", Category: models.BadgeCategoryActivity, Criteria: map[string]int64{"quizzes_passed": 10, "guides_completed": 5}, Points: 75, Active: true},

		// Consistency
		{BadgeID: "consistency_first", Name: "Balanced Week", Description: "Earn the weekly consistency bonus once", Category: models.BadgeCategoryConsistency, Criteria: map[string]int64{"weekly_bonus_count": 1}, Points: 25, Active: true},
		{BadgeID: "consistency_5", Name: "Habit Former", Description: "Earn the weekly consistency bonus 5 times", Category: models.BadgeCategoryConsistency, Criteria: map[string]int64{"weekly_bonus_count": 5}, Points: 75, Active: true},
		{BadgeID: "consistency_streak_4", Name: "Clockwork", Description: "Earn the bonus in 4 consecutive weeks", Category: models.BadgeCategoryConsistency, Criteria: map[string]int64{"consecutive_weeks": 4}, Points: 150, Active: true},

		// Special
		{BadgeID: "night_owl", Name: "Night Owl", Description: "Log 10 activities between 22:00 and 04:00", Category: models.BadgeCategorySpecial, Criteria: map[string]int64{"night_activities": 10}, Points: 25, Active: true},
		{BadgeID: "weekend_warrior", Name: "Weekend Warrior", Description: "Log 10 activities on weekends", Category: models.BadgeCategorySpecial, Criteria: map[string]int64{"weekend_activities": 10}, Points: 25, Active: true},
		{BadgeID: "quest_complete", Name: "Quest Complete", Description: "Finish the starter quest inside its window", Category: models.BadgeCategorySpecial, Criteria: map[string]int64{"quest_completed": 1}, Points: 100, Active: true},
	}
}
