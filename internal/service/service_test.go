package service

import (
	"context"
	"testing"
	"time"

	"kyc_arena/internal/config"
	"kyc_arena/internal/db"
	"kyc_arena/internal/domain"
	"kyc_arena/internal/session"
	"kyc_arena/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *session.MemoryStore) {
	t.Helper()
	gdb, err := db.Open(&config.Config{DBDriver: "sqlite", DBName: "file::memory:", IsProd: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	sessions := session.NewMemoryStore(time.Hour)
	return New(gdb, utils.NewCache(nil, time.Minute), sessions), sessions
}

func mkUser(t *testing.T, s *Service, name string, approved bool) *domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{Username: name, Password: "secret-" + name, Approved: approved})
	require.NoError(t, err)
	return u
}

func mkAdmin(t *testing.T, s *Service, name string) *domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{Username: name, Password: "secret-" + name, Role: domain.RoleAdmin, Approved: true})
	require.NoError(t, err)
	return u
}

func mkExchange(t *testing.T, s *Service, name, price string) *domain.Exchange {
	t.Helper()
	ex, err := s.CreateExchange(context.Background(), name, decimal.RequireFromString(price), true)
	require.NoError(t, err)
	return ex
}

func mkSubmission(t *testing.T, s *Service, owner *domain.User, email, exchange string) *domain.Submission {
	t.Helper()
	sub, err := s.CreateSubmission(context.Background(), owner, NewSubmission{Email: email, Password: "pw", Exchange: exchange})
	require.NoError(t, err)
	return sub
}

func stats(t *testing.T, s *Service, userID uint) *domain.UserStats {
	t.Helper()
	st, err := s.GetStats(context.Background(), userID)
	require.NoError(t, err)
	return st
}
