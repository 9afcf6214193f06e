package gamification

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/studycore/backend/internal/models"
)

// maintenanceBatchSize bounds memory while walking all user records.
const maintenanceBatchSize = 200

// RunDailyMaintenance converges every account the live path did not touch:
// users with a gap of two or more streak days either spend a freeze or lose
// the streak. Each decision is persisted through a conditional write and
// audited with the freeze balance after the change. Per-user failures are
// counted and skipped; the run never aborts on one bad account.
func (s *Service) RunDailyMaintenance(ctx context.Context, now time.Time) (*models.MaintenanceReport, error) {
	today := StreakDay(now)
	report := &models.MaintenanceReport{}

	log.Printf("[maintenance] starting daily run for streak day %s", today.Format("2006-01-02"))

	err := s.store.StreamUserStats(ctx, maintenanceBatchSize, func(stats *models.UserStats) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report.UsersProcessed++

		decision, gap := DecideMissedDays(stats.Streak, today)
		switch decision {
		case MaintenanceNoAction:
			return nil

		case MaintenanceConsumeFreeze:
			balance, ok, err := s.store.ConsumeFreeze(ctx, stats.UserID, *stats.Streak.LastActivityDay)
			if err != nil {
				report.Errors++
				log.Printf("[maintenance] consume freeze for user %s: %v", stats.UserID, err)
				return nil
			}
			if !ok {
				// Another run or a live activity already moved the user on.
				return nil
			}
			report.FreezesApplied++
			// balance comes from the write itself, so the audit is correct
			// even when a live award changed the count after the stream read.
			s.audit(ctx, stats.UserID, models.MaintenanceFreezeConsumed, gap, balance, now)

		case MaintenanceBreakStreak:
			ok, err := s.store.BreakStreak(ctx, stats.UserID, *stats.Streak.LastActivityDay)
			if err != nil {
				report.Errors++
				log.Printf("[maintenance] break streak for user %s: %v", stats.UserID, err)
				return nil
			}
			if !ok {
				return nil
			}
			report.StreaksBroken++
			s.audit(ctx, stats.UserID, models.MaintenanceStreakBroken, gap, stats.Streak.FreezesAvailable, now)
		}
		return nil
	})
	if err != nil {
		log.Printf("[maintenance] run aborted: %v", err)
		return report, err
	}

	log.Printf("[maintenance] run complete: processed=%d frozen=%d broken=%d errors=%d",
		report.UsersProcessed, report.FreezesApplied, report.StreaksBroken, report.Errors)
	return report, nil
}

func (s *Service) audit(ctx context.Context, userID, decision string, gap, freezesAfter int, now time.Time) {
	entry := &models.MaintenanceAudit{
		ID:           uuid.NewString(),
		UserID:       userID,
		Decision:     decision,
		GapDays:      gap,
		FreezesAfter: freezesAfter,
		RunAt:        now,
	}
	if err := s.store.AppendMaintenanceAudit(ctx, entry); err != nil {
		log.Printf("[maintenance] failed to record audit for user %s: %v", userID, err)
	}
}

// StartMaintenanceWorker ticks hourly and triggers the daily run once the
// streak day rolls over at the cutoff hour. Intended to be launched from
// main; the external scheduler may also call RunDailyMaintenance directly.
func (s *Service) StartMaintenanceWorker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	log.Println("[maintenance] worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[maintenance] worker shutting down")
			return
		case t := <-ticker.C:
			if t.UTC().Hour() == CutoffHour {
				if _, err := s.RunDailyMaintenance(ctx, t); err != nil {
					log.Printf("[maintenance] scheduled run failed: %v", err)
				}
			}
		}
	}
}
