package jobs

import (
	"context"
	"time"

	"kyc_arena/internal/service"
	"kyc_arena/internal/session"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Schedules of the housekeeping jobs
const (
	PurgeSessionsSpec      = "@every 10m"
	PruneNotificationsSpec = "@daily"
)

// Scheduler runs periodic housekeeping.
type Scheduler struct {
	cron *cron.Cron
}

// New registers the jobs that apply to this deployment: in-memory session
// purging when sessions live in process, notification pruning when a
// retention is configured.
func New(svc *service.Service, sessions session.Store, retentionDays int) (*Scheduler, error) {
	c := cron.New()
	if mem, ok := sessions.(*session.MemoryStore); ok {
		if _, err := c.AddFunc(PurgeSessionsSpec, func() { PurgeSessions(mem) }); err != nil {
			return nil, err
		}
	}
	if retentionDays > 0 {
		retention := time.Duration(retentionDays) * 24 * time.Hour
		_, err := c.AddFunc(PruneNotificationsSpec, func() {
			PruneNotifications(context.Background(), svc, retention, time.Now())
		})
		if err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c}, nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// PurgeSessions drops expired in-memory sessions.
func PurgeSessions(store *session.MemoryStore) int {
	n := store.Purge()
	if n > 0 {
		logrus.WithFields(logrus.Fields{"purged": n}).Info("Expired sessions purged")
	}
	return n
}

// PruneNotifications deletes read notifications older than the retention.
func PruneNotifications(ctx context.Context, svc *service.Service, retention time.Duration, now time.Time) int64 {
	n, err := svc.PruneNotifications(ctx, now.Add(-retention))
	if err != nil {
		logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Failed to prune notifications")
		return 0
	}
	logrus.WithFields(logrus.Fields{"deleted": n}).Info("Read notifications pruned")
	return n
}
