package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "studycore_user")
	password := getEnv("DB_PASSWORD", "studycore_password")
	dbname := getEnv("DB_NAME", "studycore")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS user_stats (
		user_id              VARCHAR(64) PRIMARY KEY,
		email                VARCHAR(255) NOT NULL DEFAULT '',
		course_id            VARCHAR(64) NOT NULL DEFAULT '',
		total_xp             BIGINT NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
		level                INT NOT NULL DEFAULT 1,
		level_title          VARCHAR(50) NOT NULL DEFAULT '',
		xp_to_next_level     BIGINT NOT NULL DEFAULT 0,
		current_streak       INT NOT NULL DEFAULT 0,
		longest_streak       INT NOT NULL DEFAULT 0,
		last_activity_day    DATE,
		freezes_available    INT NOT NULL DEFAULT 0 CHECK (freezes_available >= 0),
		week_flashcards      BOOLEAN NOT NULL DEFAULT FALSE,
		week_quiz            BOOLEAN NOT NULL DEFAULT FALSE,
		week_evaluation      BOOLEAN NOT NULL DEFAULT FALSE,
		week_guide           BOOLEAN NOT NULL DEFAULT FALSE,
		week_start           DATE,
		bonus_active         BOOLEAN NOT NULL DEFAULT FALSE,
		bonus_multiplier     DOUBLE PRECISION NOT NULL DEFAULT 1.0,
		last_bonus_week      DATE,
		flashcards_reviewed  BIGINT NOT NULL DEFAULT 0,
		quizzes_completed    BIGINT NOT NULL DEFAULT 0,
		quizzes_passed       BIGINT NOT NULL DEFAULT 0,
		evaluations_submitted BIGINT NOT NULL DEFAULT 0,
		guides_completed     BIGINT NOT NULL DEFAULT 0,
		weekly_bonus_count   BIGINT NOT NULL DEFAULT 0,
		consecutive_bonus_weeks BIGINT NOT NULL DEFAULT 0,
		night_activities     BIGINT NOT NULL DEFAULT 0,
		weekend_activities   BIGINT NOT NULL DEFAULT 0,
		quest_started_at     TIMESTAMP WITH TIME ZONE,
		quest_expires_at     TIMESTAMP WITH TIME ZONE,
		quest_readiness      INT NOT NULL DEFAULT 0,
		quest_completed      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS badge_definitions (
		badge_id    VARCHAR(64) PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category    VARCHAR(20) NOT NULL,
		criteria    JSONB NOT NULL DEFAULT '{}',
		points      INT NOT NULL DEFAULT 0,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS user_badges (
		id         BIGSERIAL PRIMARY KEY,
		user_id    VARCHAR(64) NOT NULL,
		badge_id   VARCHAR(64) NOT NULL REFERENCES badge_definitions(badge_id),
		earned_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, badge_id)
	);

	CREATE TABLE IF NOT EXISTS maintenance_audit (
		id            UUID PRIMARY KEY,
		user_id       VARCHAR(64) NOT NULL,
		decision      VARCHAR(30) NOT NULL,
		gap_days      INT NOT NULL,
		freezes_after INT NOT NULL,
		run_at        TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS xp_config (
		id               INT PRIMARY KEY CHECK (id = 1),
		quiz_easy        INT NOT NULL,
		quiz_medium      INT NOT NULL,
		quiz_hard        INT NOT NULL,
		flashcard_batch  INT NOT NULL,
		guide_completion INT NOT NULL,
		evaluation_high  INT NOT NULL,
		evaluation_low   INT NOT NULL,
		freeze_threshold BIGINT NOT NULL,
		updated_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_user_badges_user ON user_badges(user_id);
	CREATE INDEX IF NOT EXISTS idx_audit_user ON maintenance_audit(user_id, run_at DESC);
	CREATE INDEX IF NOT EXISTS idx_user_stats_last_day ON user_stats(last_activity_day) WHERE current_streak > 0;
	CREATE INDEX IF NOT EXISTS idx_badge_defs_active ON badge_definitions(active);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
