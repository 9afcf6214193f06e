package gamification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/studycore/backend/internal/models"
)

// memStore is the in-memory Store used by service and maintenance tests.
// Conditional writes mirror the Postgres store's semantics.
type memStore struct {
	mu     sync.Mutex
	stats  map[string]*models.UserStats
	defs   []models.BadgeDefinition
	badges map[string][]models.UserBadge
	audits []models.MaintenanceAudit
	cfg    *models.XPConfig

	getErr        error  // injected into GetUserStats
	breakErrFor   string // BreakStreak fails for this user
	beforeConsume func() // runs at the start of ConsumeFreeze, under the lock
}

func newMemStore() *memStore {
	return &memStore{
		stats:  make(map[string]*models.UserStats),
		badges: make(map[string][]models.UserBadge),
	}
}

func cloneStats(st *models.UserStats) *models.UserStats {
	c := *st
	return &c
}

type memTxn struct {
	s *memStore
}

func (t *memTxn) GetUserStats(userID string) (*models.UserStats, error) {
	st, ok := t.s.stats[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user stats %s", ErrNotFound, userID)
	}
	return cloneStats(st), nil
}

func (t *memTxn) PutUserStats(stats *models.UserStats) error {
	t.s.stats[stats.UserID] = cloneStats(stats)
	return nil
}

func (s *memStore) RunInTransaction(ctx context.Context, fn func(Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTxn{s: s})
}

func (s *memStore) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	st, ok := s.stats[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user stats %s", ErrNotFound, userID)
	}
	return cloneStats(st), nil
}

func (s *memStore) CreateUserStats(ctx context.Context, stats *models.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stats[stats.UserID]; ok {
		return nil
	}
	s.stats[stats.UserID] = cloneStats(stats)
	return nil
}

func (s *memStore) ConsumeFreeze(ctx context.Context, userID string, expectDay time.Time) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeConsume != nil {
		s.beforeConsume()
	}
	st, ok := s.stats[userID]
	if !ok || st.Streak.FreezesAvailable <= 0 ||
		st.Streak.LastActivityDay == nil || !st.Streak.LastActivityDay.Equal(expectDay) {
		return 0, false, nil
	}
	st.Streak.FreezesAvailable--
	advanced := expectDay.AddDate(0, 0, 1)
	st.Streak.LastActivityDay = &advanced
	return st.Streak.FreezesAvailable, true, nil
}

func (s *memStore) BreakStreak(ctx context.Context, userID string, expectDay time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == s.breakErrFor {
		return false, fmt.Errorf("%w: injected failure", ErrStoreUnavailable)
	}
	st, ok := s.stats[userID]
	if !ok || st.Streak.CurrentCount == 0 ||
		st.Streak.LastActivityDay == nil || !st.Streak.LastActivityDay.Equal(expectDay) {
		return false, nil
	}
	st.Streak.CurrentCount = 0
	return true, nil
}

func (s *memStore) UnlockBadge(ctx context.Context, userID, badgeID string, earnedAt time.Time) (*models.UserBadge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ub := range s.badges[userID] {
		if ub.BadgeID == badgeID {
			existing := ub
			return &existing, false, nil
		}
	}
	ub := models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: earnedAt}
	s.badges[userID] = append(s.badges[userID], ub)
	return &ub, true, nil
}

func (s *memStore) ListBadgeDefinitions(ctx context.Context, activeOnly bool) ([]models.BadgeDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BadgeDefinition
	for _, def := range s.defs {
		if activeOnly && !def.Active {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

func (s *memStore) SeedBadgeDefinitions(ctx context.Context, defs []models.BadgeDefinition) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, def := range defs {
		replaced := false
		for i := range s.defs {
			if s.defs[i].BadgeID == def.BadgeID {
				s.defs[i] = def
				replaced = true
				break
			}
		}
		if !replaced {
			s.defs = append(s.defs, def)
		}
		count++
	}
	return count, nil
}

func (s *memStore) GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UserBadge(nil), s.badges[userID]...), nil
}

func (s *memStore) StreamUserStats(ctx context.Context, batchSize int, fn func(*models.UserStats) error) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.stats))
	for id := range s.stats {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)

	for _, id := range ids {
		s.mu.Lock()
		st := cloneStats(s.stats[id])
		s.mu.Unlock()
		if err := fn(st); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) AppendMaintenanceAudit(ctx context.Context, entry *models.MaintenanceAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, *entry)
	return nil
}

func (s *memStore) GetXPConfig(ctx context.Context) (*models.XPConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return nil, fmt.Errorf("%w: xp config", ErrNotFound)
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (s *memStore) PutXPConfig(ctx context.Context, cfg *models.XPConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cfg
	s.cfg = &c
	return nil
}
