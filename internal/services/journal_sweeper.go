package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JournalCleaner is the pruning side of the activity journal.
type JournalCleaner interface {
	Cleanup(olderThan time.Time) (int, error)
}

// SweeperConfig controls how often and how far back the journal is pruned.
// Schedule, when set, is a six-field cron spec (seconds first) or a
// descriptor and takes precedence over Interval.
type SweeperConfig struct {
	Interval  time.Duration
	Retention time.Duration
	Schedule  string
}

// JournalSweeper prunes old journal entries on a cron schedule.
type JournalSweeper struct {
	journal JournalCleaner
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SweeperConfig
	now     func() time.Time
}

func NewJournalSweeper(journal JournalCleaner, logger *zap.Logger, cfg SweeperConfig) (*JournalSweeper, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 720 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	js := &JournalSweeper{
		journal: journal,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	}
	if _, err := js.cron.AddFunc(schedule, func() {
		if _, err := js.Sweep(); err != nil {
			js.logger.Error("journal sweep failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule journal sweep %q: %w", schedule, err)
	}

	return js, nil
}

// Start launches the cron scheduler.
func (js *JournalSweeper) Start() {
	if js == nil || js.cron == nil {
		return
	}
	js.cron.Start()
	js.logger.Info("journal sweeper started",
		zap.Duration("interval", js.cfg.Interval),
		zap.String("schedule", js.cfg.Schedule),
		zap.Duration("retention", js.cfg.Retention))
}

// Stop waits for a running sweep to finish or ctx to expire.
func (js *JournalSweeper) Stop(ctx context.Context) {
	if js == nil || js.cron == nil {
		return
	}
	stopCtx := js.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	js.logger.Info("journal sweeper stopped")
}

// Sweep removes entries older than the retention window.
func (js *JournalSweeper) Sweep() (int, error) {
	if js == nil || js.journal == nil {
		return 0, nil
	}
	removed, err := js.journal.Cleanup(js.now().Add(-js.cfg.Retention))
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		js.logger.Info("journal pruned", zap.Int("removed", removed))
	}
	return removed, nil
}
