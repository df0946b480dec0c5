// Package service implements the review workflow: accounts, exchanges,
// submissions and their verdicts, the stats ledger and the portal switch.
package service

import (
	"context"
	"errors"
	"fmt"

	"kyc_arena/internal/domain"
	"kyc_arena/internal/session"
	"kyc_arena/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the entry point used by the HTTP layer and the CLI.
type Service struct {
	db       *gorm.DB
	cache    *utils.Cache
	sessions session.Store
	Portal   *PortalState
}

// New builds a Service. cache may wrap a nil Redis client and sessions may
// be nil when no login sessions exist (CLI use).
func New(db *gorm.DB, cache *utils.Cache, sessions session.Store) *Service {
	return &Service{
		db:       db,
		cache:    cache,
		sessions: sessions,
		Portal:   NewPortalState(db, cache),
	}
}

// DB exposes the underlying connection for maintenance tasks.
func (s *Service) DB() *gorm.DB { return s.db }

func statsGenKey(userID uint) string { return fmt.Sprintf("stats:user:%d:gen", userID) }

// statsCacheKey names the cached stats under the user's current generation.
// Writers bump the generation after commit, so a value cached from a read
// that raced the commit lands under a key nobody reads again.
func (s *Service) statsCacheKey(ctx context.Context, userID uint) string {
	var gen int64
	_, _ = s.cache.Get(ctx, statsGenKey(userID), &gen)
	return fmt.Sprintf("stats:user:%d:v%d", userID, gen)
}

// lockStats loads the user's stats row for update, creating it when missing.
func lockStats(tx *gorm.DB, userID uint) (*domain.UserStats, error) {
	var st domain.UserStats
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = domain.UserStats{UserID: userID}
		err = tx.Create(&st).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for user %d: %w", userID, err)
	}
	return &st, nil
}

func (s *Service) forgetStats(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		if err := s.cache.Incr(ctx, statsGenKey(id)); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Warn("Failed to invalidate cached stats")
		}
	}
}

func (s *Service) revokeSessions(ctx context.Context, userID uint) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.RevokeUser(ctx, userID)
}
