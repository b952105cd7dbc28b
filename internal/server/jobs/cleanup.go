// Package jobs runs periodic maintenance of the server's token tables.
package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/metrics"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/robfig/cron/v3"
)

// CleanupJob purges expired refresh tokens and password reset tokens.
type CleanupJob struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewCleanupJob(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *CleanupJob {
	return &CleanupJob{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "cleanup"),
		now:         time.Now,
	}
}

// Run purges once and reports how many rows of each kind were removed.
func (j *CleanupJob) Run(ctx context.Context) (refresh, reset int64, err error) {
	now := j.now()

	refresh, err = j.repomanager.RefreshTokens(j.db).DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("purge refresh tokens: %w", err)
	}

	reset, err = j.repomanager.ResetTokens(j.db).DeleteExpired(ctx, now)
	if err != nil {
		return refresh, 0, fmt.Errorf("purge reset tokens: %w", err)
	}

	return refresh, reset, nil
}

// Schedule runs the job on spec (cron syntax or @every) until stop is called
// or ctx is cancelled. stop waits for a running purge to finish.
func (j *CleanupJob) Schedule(ctx context.Context, spec string) (stop func(), err error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(spec, func() { j.runLogged(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}

	c.Start()
	j.logger.Info(ctx, "cleanup scheduled", "schedule", spec)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		<-c.Stop().Done()
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-c.Stop().Done()
	}, nil
}

func (j *CleanupJob) runLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	refresh, reset, err := j.Run(ctx)
	if err != nil {
		j.logger.Error(ctx, "cleanup failed", "error", err)
		return
	}
	metrics.CleanupDeletedTotal.WithLabelValues("refresh_tokens").Add(float64(refresh))
	metrics.CleanupDeletedTotal.WithLabelValues("password_reset_tokens").Add(float64(reset))
	j.logger.Debug(ctx, "cleanup done", "refresh_tokens", refresh, "reset_tokens", reset)
}
