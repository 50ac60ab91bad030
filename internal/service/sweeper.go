package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

// Sweeper periodically deletes read notifications from every partition.
// Unread notifications are never touched.
type Sweeper struct {
	partitions *repository.Partitions
	interval   time.Duration
}

func NewSweeper(partitions *repository.Partitions, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 72 * time.Hour
	}
	return &Sweeper{partitions: partitions, interval: interval}
}

// Run blocks until ctx is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over all partitions. A failed partition does not stop
// the others; each runs independently.
func (s *Sweeper) Sweep(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for _, part := range s.partitions.All() {
		part := part
		g.Go(func() error {
			deleted, err := part.Notifications.DeleteRead(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "notification sweep", "role", part.Role, "error", err)
				return nil
			}
			if deleted > 0 {
				logger.InfoContext(ctx, "notification sweep", "role", part.Role, "deleted", deleted)
			}
			return nil
		})
	}
	g.Wait()
}
