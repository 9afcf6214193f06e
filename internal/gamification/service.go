package gamification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/studycore/backend/internal/models"
)

// questWindow is how long the starter quest stays open after activation.
const questWindow = 7 * 24 * time.Hour

// Service orchestrates the engine: one activity event flows through the
// clock, XP calculator, streak tracker, consistency tracker, and badge
// engine, producing a single atomic stats write plus idempotent badge
// unlocks layered on top.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ── Activity Logging ────────────────────────────────────────

// LogActivity processes one activity event at time now. On store failure it
// returns a zeroed result along with the error so the route layer can
// degrade without blocking the action that triggered the event.
func (s *Service) LogActivity(ctx context.Context, req models.LogActivityRequest, now time.Time) (*models.ActivityResult, error) {
	if req.UserID == "" || req.ActivityType == "" {
		return &models.ActivityResult{NewlyUnlockedBadges: []string{}}, fmt.Errorf("%w: user_id and activity_type are required", ErrInvalid)
	}

	current, err := s.GetOrCreateUserStats(ctx, req.UserID, req.Email, req.CourseID)
	if err != nil {
		log.Printf("[gamification] failed to ensure stats for user %s: %v", req.UserID, err)
		return &models.ActivityResult{NewlyUnlockedBadges: []string{}}, err
	}

	// An unrecognized activity type is a no-op: no XP, no streak advance, no
	// counters, no quest activation. Logged, never an error.
	if _, ok := CategoryForActivity(req.ActivityType); !ok {
		log.Printf("[gamification] unrecognized activity type %q from user %s, ignoring", req.ActivityType, req.UserID)
		return &models.ActivityResult{
			NewTotalXP:          current.TotalXP,
			StreakMaintained:    true,
			CurrentStreak:       current.Streak.CurrentCount,
			BonusMultiplier:     1.0,
			NewlyUnlockedBadges: []string{},
		}, nil
	}

	cfg := s.xpConfig(ctx)
	day := StreakDay(now)
	week := WeekStart(now)

	var result models.ActivityResult
	var snapshot models.UserStats

	err = s.store.RunInTransaction(ctx, func(tx Txn) error {
		stats, err := tx.GetUserStats(req.UserID)
		if err != nil {
			return err
		}

		prevLevel := stats.Level

		// The multiplier is read before this activity's consistency update:
		// the award that activates the bonus is never itself multiplied.
		multiplier := ActiveMultiplier(stats.Weekly, week)
		baseXP := XPForActivity(req.ActivityType, req.Payload, cfg)
		awarded := ApplyMultiplier(baseXP, multiplier)

		oldTotal := stats.TotalXP
		stats.TotalXP += int64(awarded)
		stats.Streak.FreezesAvailable += FreezesEarned(oldTotal, stats.TotalXP, cfg.FreezeThreshold)

		outcome := AdvanceStreak(&stats.Streak, day)

		if cat, ok := CategoryForActivity(req.ActivityType); ok {
			ApplyConsistency(&stats.Weekly, &stats.Activities, cat, week)
		}

		bumpCounters(stats, req, now)
		advanceQuest(stats, now)

		level, title, toNext := LevelForXP(stats.TotalXP)
		stats.Level = level
		stats.LevelTitle = title
		stats.XPToNextLevel = toNext
		stats.UpdatedAt = now

		if err := tx.PutUserStats(stats); err != nil {
			return err
		}

		result = models.ActivityResult{
			XPAwarded:        awarded,
			NewTotalXP:       stats.TotalXP,
			LevelUp:          level > prevLevel,
			StreakMaintained: outcome != StreakBroken,
			CurrentStreak:    stats.Streak.CurrentCount,
			BonusMultiplier:  multiplier,
		}
		if result.LevelUp {
			result.NewLevel = level
			result.NewLevelTitle = title
		}
		snapshot = *stats
		return nil
	})
	if err != nil {
		log.Printf("[gamification] log activity for user %s: %v", req.UserID, err)
		return &models.ActivityResult{NewlyUnlockedBadges: []string{}}, err
	}

	// Badge evaluation sits outside the activity transaction; each unlock is
	// its own idempotent conditional write, so parallel submissions cannot
	// duplicate a badge.
	result.NewlyUnlockedBadges = s.unlockEarnedBadges(ctx, &snapshot, now)
	return &result, nil
}

func bumpCounters(stats *models.UserStats, req models.LogActivityRequest, now time.Time) {
	switch req.ActivityType {
	case models.ActivityFlashcardsReviewed:
		stats.Activities.FlashcardsReviewed += int64(req.Payload.CorrectCards)
	case models.ActivityQuizCompleted:
		stats.Activities.QuizzesCompleted++
		if req.Payload.Total > 0 && float64(req.Payload.Score)/float64(req.Payload.Total) >= QuizPassThreshold {
			stats.Activities.QuizzesPassed++
		}
	case models.ActivityEvaluationSubmitted:
		stats.Activities.EvaluationsSubmitted++
	case models.ActivityGuideCompleted:
		stats.Activities.GuidesCompleted++
	}
	if IsNight(now) {
		stats.Activities.NightActivities++
	}
	if IsWeekend(now) {
		stats.Activities.WeekendActivities++
	}
}

// ── Special Quest ───────────────────────────────────────────

// questGoals are the per-category targets the starter quest tracks.
const (
	questGoalGuides     = 1
	questGoalEvals      = 1
	questGoalQuizzes    = 2
	questGoalFlashcards = 20
)

// advanceQuest activates the quest on first activity and updates readiness
// while the window is open. Completion is terminal.
func advanceQuest(stats *models.UserStats, now time.Time) {
	q := &stats.Quest
	if q.StartedAt == nil {
		started := now
		expires := now.Add(questWindow)
		q.StartedAt = &started
		q.ExpiresAt = &expires
	}
	if q.Completed || (q.ExpiresAt != nil && now.After(*q.ExpiresAt)) {
		return
	}
	q.Readiness = questReadiness(stats.Activities)
	if q.Readiness >= 100 {
		q.Completed = true
	}
}

func questReadiness(c models.ActivityCounters) int {
	progress := func(have, goal int64) float64 {
		if have >= goal {
			return 1.0
		}
		return float64(have) / float64(goal)
	}
	total := progress(c.GuidesCompleted, questGoalGuides) +
		progress(c.EvaluationsSubmitted, questGoalEvals) +
		progress(c.QuizzesPassed, questGoalQuizzes) +
		progress(c.FlashcardsReviewed, questGoalFlashcards)
	return int(total / 4 * 100)
}

// ── Badge Unlocking ─────────────────────────────────────────

func (s *Service) unlockEarnedBadges(ctx context.Context, stats *models.UserStats, now time.Time) []string {
	newly := []string{}

	catalog, err := s.store.ListBadgeDefinitions(ctx, true)
	if err != nil {
		log.Printf("[gamification] badge catalog unavailable, skipping evaluation: %v", err)
		return newly
	}
	existing, err := s.store.GetUserBadges(ctx, stats.UserID)
	if err != nil {
		log.Printf("[gamification] user badges unavailable, skipping evaluation: %v", err)
		return newly
	}
	earned := make(map[string]bool, len(existing))
	for _, ub := range existing {
		earned[ub.BadgeID] = true
	}

	for _, def := range EvaluateBadges(stats, catalog, earned) {
		_, created, err := s.store.UnlockBadge(ctx, stats.UserID, def.BadgeID, now)
		if err != nil {
			log.Printf("[gamification] failed to unlock badge %q for user %s: %v", def.BadgeID, stats.UserID, err)
			continue
		}
		if created {
			newly = append(newly, def.BadgeID)
		}
	}
	return newly
}

// ── Stats Read ──────────────────────────────────────────────

// GetOrCreateUserStats returns the user's stats record, creating it on first
// contact. On store failure it returns a zeroed default record along with
// the error; callers for whom gamification is supplementary can serve the
// default.
func (s *Service) GetOrCreateUserStats(ctx context.Context, userID, email, courseID string) (*models.UserStats, error) {
	if userID == "" {
		return defaultUserStats(userID, email, courseID), fmt.Errorf("%w: user_id is required", ErrInvalid)
	}

	stats, err := s.store.GetUserStats(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return defaultUserStats(userID, email, courseID), err
	}

	fresh := defaultUserStats(userID, email, courseID)
	if err := s.store.CreateUserStats(ctx, fresh); err != nil {
		return fresh, err
	}
	// Re-read: a concurrent creator may have won the upsert.
	stats, err = s.store.GetUserStats(ctx, userID)
	if err != nil {
		return fresh, err
	}
	return stats, nil
}

func defaultUserStats(userID, email, courseID string) *models.UserStats {
	level, title, toNext := LevelForXP(0)
	return &models.UserStats{
		UserID:        userID,
		Email:         email,
		CourseID:      courseID,
		Level:         level,
		LevelTitle:    title,
		XPToNextLevel: toNext,
		Weekly:        models.WeeklyConsistency{BonusMultiplier: 1.0},
	}
}

// GetUserBadges lists the badges a user has earned.
func (s *Service) GetUserBadges(ctx context.Context, userID string) (*models.UserBadgesResponse, error) {
	badges, err := s.store.GetUserBadges(ctx, userID)
	if err != nil {
		log.Printf("[gamification] user badges unavailable for %s: %v", userID, err)
		return &models.UserBadgesResponse{Badges: []models.UserBadge{}}, err
	}
	if badges == nil {
		badges = []models.UserBadge{}
	}
	return &models.UserBadgesResponse{Badges: badges, Total: len(badges)}, nil
}

// ── Administration ──────────────────────────────────────────

// SeedBadgeDefinitions validates and upserts a catalog. Unrecognized
// criterion keys fail the whole seed with ErrInvalid before any write.
func (s *Service) SeedBadgeDefinitions(ctx context.Context, defs []models.BadgeDefinition) (int, error) {
	for _, def := range defs {
		if err := ValidateBadgeDefinition(def); err != nil {
			return 0, err
		}
	}
	return s.store.SeedBadgeDefinitions(ctx, defs)
}

// UpdateXPConfig overwrites the stored XP value table.
func (s *Service) UpdateXPConfig(ctx context.Context, cfg models.XPConfig) error {
	if cfg.QuizEasy < 0 || cfg.QuizMedium < 0 || cfg.QuizHard < 0 ||
		cfg.FlashcardBatch < 0 || cfg.GuideCompletion < 0 ||
		cfg.EvaluationHigh < 0 || cfg.EvaluationLow < 0 || cfg.FreezeThreshold < 0 {
		return fmt.Errorf("%w: xp amounts must be non-negative", ErrInvalid)
	}
	return s.store.PutXPConfig(ctx, &cfg)
}

// xpConfig loads the admin-edited config, falling back to the compiled-in
// defaults when none is stored or the store is unreachable.
func (s *Service) xpConfig(ctx context.Context) models.XPConfig {
	cfg, err := s.store.GetXPConfig(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[gamification] xp config unavailable, using defaults: %v", err)
		}
		return DefaultXPConfig()
	}
	return *cfg
}
