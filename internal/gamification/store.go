package gamification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/studycore/backend/internal/models"
)

// Txn is the handle passed to a transactional function. Reads inside a
// transaction lock the row; the whole record is written back in one call.
type Txn interface {
	GetUserStats(userID string) (*models.UserStats, error)
	PutUserStats(stats *models.UserStats) error
}

// Store is the persistence contract of the engine. Any store with
// transactions and conditional writes can implement it; the engine never
// assumes Postgres outside of NewStore.
type Store interface {
	// RunInTransaction runs fn atomically with bounded retry on conflict.
	// A transaction that still conflicts after retries returns ErrConflict.
	RunInTransaction(ctx context.Context, fn func(Txn) error) error

	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	CreateUserStats(ctx context.Context, stats *models.UserStats) error

	// ConsumeFreeze spends one freeze for the missed day after expectDay,
	// advancing the last-activity day by one. The write is conditional on
	// both the freeze balance and the expected day, so concurrent runs
	// cannot double-spend or drive the balance negative. Returns the
	// post-update balance and whether the write applied; false means the
	// condition no longer held.
	ConsumeFreeze(ctx context.Context, userID string, expectDay time.Time) (int, bool, error)

	// BreakStreak zeroes the current streak, conditional on the expected
	// last-activity day and a still-positive count. Returns false when
	// another path already handled the user.
	BreakStreak(ctx context.Context, userID string, expectDay time.Time) (bool, error)

	// UnlockBadge creates the (user, badge) record if and only if it does
	// not exist, in a single statement-level transaction. On a duplicate it
	// returns the existing record and created=false without writing.
	UnlockBadge(ctx context.Context, userID, badgeID string, earnedAt time.Time) (badge *models.UserBadge, created bool, err error)

	ListBadgeDefinitions(ctx context.Context, activeOnly bool) ([]models.BadgeDefinition, error)
	SeedBadgeDefinitions(ctx context.Context, defs []models.BadgeDefinition) (int, error)
	GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error)

	// StreamUserStats walks every stats record in key order, batchSize rows
	// at a time, invoking fn per record. Rows that fail to deserialize are
	// skipped with a warning. fn returning an error aborts the stream.
	StreamUserStats(ctx context.Context, batchSize int, fn func(*models.UserStats) error) error

	AppendMaintenanceAudit(ctx context.Context, entry *models.MaintenanceAudit) error

	GetXPConfig(ctx context.Context) (*models.XPConfig, error)
	PutXPConfig(ctx context.Context, cfg *models.XPConfig) error
}

// postgresStore implements Store on database/sql + lib/pq.
type postgresStore struct {
	db *sql.DB
}

// NewStore wraps a connected Postgres handle.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

const txnMaxRetries = 3

func (s *postgresStore) RunInTransaction(ctx context.Context, fn func(Txn) error) error {
	var lastErr error
	for attempt := 0; attempt < txnMaxRetries; attempt++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: begin: %v", ErrStoreUnavailable, err)
		}
		err = fn(&pgTxn{tx: tx})
		if err == nil {
			err = tx.Commit()
			if err == nil {
				return nil
			}
			if !isSerializationFailure(err) {
				return fmt.Errorf("%w: commit: %v", ErrStoreUnavailable, err)
			}
		} else {
			tx.Rollback()
			if !isSerializationFailure(err) {
				return err
			}
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

type pgTxn struct {
	tx *sql.Tx
}

const userStatsColumns = `user_id, email, course_id, total_xp, level, level_title, xp_to_next_level,
	current_streak, longest_streak, last_activity_day, freezes_available,
	week_flashcards, week_quiz, week_evaluation, week_guide, week_start,
	bonus_active, bonus_multiplier, last_bonus_week,
	flashcards_reviewed, quizzes_completed, quizzes_passed, evaluations_submitted, guides_completed,
	weekly_bonus_count, consecutive_bonus_weeks, night_activities, weekend_activities,
	quest_started_at, quest_expires_at, quest_readiness, quest_completed,
	created_at, updated_at`

func scanUserStats(row interface{ Scan(...any) error }) (*models.UserStats, error) {
	var st models.UserStats
	err := row.Scan(
		&st.UserID, &st.Email, &st.CourseID, &st.TotalXP, &st.Level, &st.LevelTitle, &st.XPToNextLevel,
		&st.Streak.CurrentCount, &st.Streak.LongestCount, &st.Streak.LastActivityDay, &st.Streak.FreezesAvailable,
		&st.Weekly.Flashcards, &st.Weekly.Quiz, &st.Weekly.Evaluation, &st.Weekly.Guide, &st.Weekly.WeekStart,
		&st.Weekly.BonusActive, &st.Weekly.BonusMultiplier, &st.Weekly.LastBonusWeek,
		&st.Activities.FlashcardsReviewed, &st.Activities.QuizzesCompleted, &st.Activities.QuizzesPassed,
		&st.Activities.EvaluationsSubmitted, &st.Activities.GuidesCompleted,
		&st.Activities.WeeklyBonusCount, &st.Activities.ConsecutiveBonusWeeks,
		&st.Activities.NightActivities, &st.Activities.WeekendActivities,
		&st.Quest.StartedAt, &st.Quest.ExpiresAt, &st.Quest.Readiness, &st.Quest.Completed,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func getUserStats(q interface {
	QueryRow(string, ...any) *sql.Row
}, userID string, forUpdate bool) (*models.UserStats, error) {
	query := `SELECT ` + userStatsColumns + ` FROM user_stats WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	st, err := scanUserStats(q.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user stats %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user stats: %v", ErrStoreUnavailable, err)
	}
	return st, nil
}

func (t *pgTxn) GetUserStats(userID string) (*models.UserStats, error) {
	return getUserStats(t.tx, userID, true)
}

const putUserStatsQuery = `UPDATE user_stats SET
	email = $2, course_id = $3, total_xp = $4, level = $5, level_title = $6, xp_to_next_level = $7,
	current_streak = $8, longest_streak = $9, last_activity_day = $10, freezes_available = $11,
	week_flashcards = $12, week_quiz = $13, week_evaluation = $14, week_guide = $15, week_start = $16,
	bonus_active = $17, bonus_multiplier = $18, last_bonus_week = $19,
	flashcards_reviewed = $20, quizzes_completed = $21, quizzes_passed = $22,
	evaluations_submitted = $23, guides_completed = $24,
	weekly_bonus_count = $25, consecutive_bonus_weeks = $26, night_activities = $27, weekend_activities = $28,
	quest_started_at = $29, quest_expires_at = $30, quest_readiness = $31, quest_completed = $32,
	updated_at = NOW()
 WHERE user_id = $1`

func putUserStatsArgs(st *models.UserStats) []any {
	return []any{
		st.UserID, st.Email, st.CourseID, st.TotalXP, st.Level, st.LevelTitle, st.XPToNextLevel,
		st.Streak.CurrentCount, st.Streak.LongestCount, st.Streak.LastActivityDay, st.Streak.FreezesAvailable,
		st.Weekly.Flashcards, st.Weekly.Quiz, st.Weekly.Evaluation, st.Weekly.Guide, st.Weekly.WeekStart,
		st.Weekly.BonusActive, st.Weekly.BonusMultiplier, st.Weekly.LastBonusWeek,
		st.Activities.FlashcardsReviewed, st.Activities.QuizzesCompleted, st.Activities.QuizzesPassed,
		st.Activities.EvaluationsSubmitted, st.Activities.GuidesCompleted,
		st.Activities.WeeklyBonusCount, st.Activities.ConsecutiveBonusWeeks,
		st.Activities.NightActivities, st.Activities.WeekendActivities,
		st.Quest.StartedAt, st.Quest.ExpiresAt, st.Quest.Readiness, st.Quest.Completed,
	}
}

func (t *pgTxn) PutUserStats(stats *models.UserStats) error {
	_, err := t.tx.Exec(putUserStatsQuery, putUserStatsArgs(stats)...)
	if err != nil {
		return fmt.Errorf("put user stats: %w", err)
	}
	return nil
}

// ── Non-transactional operations ────────────────────────────

func (s *postgresStore) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	query := `SELECT ` + userStatsColumns + ` FROM user_stats WHERE user_id = $1`
	st, err := scanUserStats(s.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user stats %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user stats: %v", ErrStoreUnavailable, err)
	}
	return st, nil
}

func (s *postgresStore) CreateUserStats(ctx context.Context, stats *models.UserStats) error {
	// ON CONFLICT DO NOTHING keeps creation race-safe: concurrent first
	// activities for the same user both proceed against the single row.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_stats (user_id, email, course_id, level, level_title, xp_to_next_level, bonus_multiplier)
		 VALUES ($1, $2, $3, $4, $5, $6, 1.0)
		 ON CONFLICT (user_id) DO NOTHING`,
		stats.UserID, stats.Email, stats.CourseID, stats.Level, stats.LevelTitle, stats.XPToNextLevel,
	)
	if err != nil {
		return fmt.Errorf("%w: create user stats: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *postgresStore) ConsumeFreeze(ctx context.Context, userID string, expectDay time.Time) (int, bool, error) {
	// The ::date cast keeps the comparison in date space regardless of the
	// session time zone; RETURNING reports the balance this write produced,
	// not a possibly stale snapshot.
	var balance int
	err := s.db.QueryRowContext(ctx,
		`UPDATE user_stats SET
		    freezes_available = freezes_available - 1,
		    last_activity_day = last_activity_day + INTERVAL '1 day',
		    updated_at = NOW()
		 WHERE user_id = $1 AND freezes_available > 0 AND last_activity_day = $2::date
		 RETURNING freezes_available`,
		userID, expectDay,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: consume freeze: %v", ErrStoreUnavailable, err)
	}
	return balance, true, nil
}

func (s *postgresStore) BreakStreak(ctx context.Context, userID string, expectDay time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE user_stats SET current_streak = 0, updated_at = NOW()
		 WHERE user_id = $1 AND current_streak > 0 AND last_activity_day = $2::date`,
		userID, expectDay,
	)
	if err != nil {
		return false, fmt.Errorf("%w: break streak: %v", ErrStoreUnavailable, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *postgresStore) UnlockBadge(ctx context.Context, userID, badgeID string, earnedAt time.Time) (*models.UserBadge, bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO user_badges (user_id, badge_id, earned_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, badgeID, earnedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("%w: unlock badge: %v", ErrStoreUnavailable, err)
	}
	rows, _ := result.RowsAffected()

	var ub models.UserBadge
	err = s.db.QueryRowContext(ctx,
		`SELECT user_id, badge_id, earned_at FROM user_badges WHERE user_id = $1 AND badge_id = $2`,
		userID, badgeID,
	).Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt)
	if err != nil {
		return nil, false, fmt.Errorf("%w: read badge: %v", ErrStoreUnavailable, err)
	}
	return &ub, rows > 0, nil
}

func (s *postgresStore) ListBadgeDefinitions(ctx context.Context, activeOnly bool) ([]models.BadgeDefinition, error) {
	query := `SELECT badge_id, name, description, category, criteria, points, active FROM badge_definitions`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY badge_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list badge definitions: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var defs []models.BadgeDefinition
	for rows.Next() {
		var def models.BadgeDefinition
		var criteriaJSON []byte
		if err := rows.Scan(&def.BadgeID, &def.Name, &def.Description, &def.Category, &criteriaJSON, &def.Points, &def.Active); err != nil {
			log.Printf("[gamification] skipping unreadable badge definition: %v", err)
			continue
		}
		if err := json.Unmarshal(criteriaJSON, &def.Criteria); err != nil {
			log.Printf("[gamification] skipping badge %q with corrupt criteria: %v", def.BadgeID, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (s *postgresStore) SeedBadgeDefinitions(ctx context.Context, defs []models.BadgeDefinition) (int, error) {
	count := 0
	for _, def := range defs {
		criteriaJSON, err := json.Marshal(def.Criteria)
		if err != nil {
			return count, fmt.Errorf("%w: marshal criteria for %q: %v", ErrInvalid, def.BadgeID, err)
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO badge_definitions (badge_id, name, description, category, criteria, points, active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (badge_id) DO UPDATE SET
			    name = EXCLUDED.name, description = EXCLUDED.description,
			    category = EXCLUDED.category, criteria = EXCLUDED.criteria,
			    points = EXCLUDED.points, active = EXCLUDED.active,
			    updated_at = NOW()`,
			def.BadgeID, def.Name, def.Description, def.Category, criteriaJSON, def.Points, def.Active,
		)
		if err != nil {
			return count, fmt.Errorf("%w: seed badge %q: %v", ErrStoreUnavailable, def.BadgeID, err)
		}
		count++
	}
	return count, nil
}

func (s *postgresStore) GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, badge_id, earned_at FROM user_badges WHERE user_id = $1 ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: get user badges: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var badges []models.UserBadge
	for rows.Next() {
		var ub models.UserBadge
		if err := rows.Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt); err != nil {
			return nil, err
		}
		badges = append(badges, ub)
	}
	return badges, rows.Err()
}

func (s *postgresStore) StreamUserStats(ctx context.Context, batchSize int, fn func(*models.UserStats) error) error {
	if batchSize <= 0 {
		batchSize = 200
	}
	lastID := ""
	for {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+userStatsColumns+` FROM user_stats WHERE user_id > $1 ORDER BY user_id LIMIT $2`,
			lastID, batchSize,
		)
		if err != nil {
			return fmt.Errorf("%w: stream user stats: %v", ErrStoreUnavailable, err)
		}

		fetched := 0
		advanced := false
		for rows.Next() {
			st, err := scanUserStats(rows)
			if err != nil {
				log.Printf("[gamification] skipping unreadable user stats row: %v", err)
				fetched++
				continue
			}
			fetched++
			lastID = st.UserID
			advanced = true
			if err := fn(st); err != nil {
				rows.Close()
				return err
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("%w: stream user stats: %v", ErrStoreUnavailable, err)
		}
		rows.Close()

		if fetched < batchSize {
			return nil
		}
		if !advanced {
			// A full page of unreadable rows cannot advance the cursor.
			return fmt.Errorf("%w: stream stalled on unreadable rows after %s", ErrStoreUnavailable, lastID)
		}
	}
}

func (s *postgresStore) AppendMaintenanceAudit(ctx context.Context, entry *models.MaintenanceAudit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO maintenance_audit (id, user_id, decision, gap_days, freezes_after, run_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.Decision, entry.GapDays, entry.FreezesAfter, entry.RunAt,
	)
	if err != nil {
		return fmt.Errorf("%w: append audit: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *postgresStore) GetXPConfig(ctx context.Context) (*models.XPConfig, error) {
	var cfg models.XPConfig
	err := s.db.QueryRowContext(ctx,
		`SELECT quiz_easy, quiz_medium, quiz_hard, flashcard_batch, guide_completion,
		        evaluation_high, evaluation_low, freeze_threshold
		 FROM xp_config WHERE id = 1`,
	).Scan(&cfg.QuizEasy, &cfg.QuizMedium, &cfg.QuizHard, &cfg.FlashcardBatch, &cfg.GuideCompletion,
		&cfg.EvaluationHigh, &cfg.EvaluationLow, &cfg.FreezeThreshold)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: xp config", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get xp config: %v", ErrStoreUnavailable, err)
	}
	return &cfg, nil
}

func (s *postgresStore) PutXPConfig(ctx context.Context, cfg *models.XPConfig) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO xp_config (id, quiz_easy, quiz_medium, quiz_hard, flashcard_batch,
		    guide_completion, evaluation_high, evaluation_low, freeze_threshold, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		    quiz_easy = EXCLUDED.quiz_easy, quiz_medium = EXCLUDED.quiz_medium,
		    quiz_hard = EXCLUDED.quiz_hard, flashcard_batch = EXCLUDED.flashcard_batch,
		    guide_completion = EXCLUDED.guide_completion,
		    evaluation_high = EXCLUDED.evaluation_high, evaluation_low = EXCLUDED.evaluation_low,
		    freeze_threshold = EXCLUDED.freeze_threshold, updated_at = NOW()`,
		cfg.QuizEasy, cfg.QuizMedium, cfg.QuizHard, cfg.FlashcardBatch,
		cfg.GuideCompletion, cfg.EvaluationHigh, cfg.EvaluationLow, cfg.FreezeThreshold,
	)
	if err != nil {
		return fmt.Errorf("%w: put xp config: %v", ErrStoreUnavailable, err)
	}
	return nil
}
