package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/taskmanager/repository"
)

// Check is one probed dependency. Optional dependencies are reported but do
// not take the service offline.
type Check struct {
	Name     string
	Pinger   repository.Pinger
	Optional bool
	Timeout  time.Duration
}

// Sizer reports the number of stored journal entries.
type Sizer interface {
	Size() (int, error)
}

type Monitor struct {
	checks  []Check
	journal Sizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks []Check, journal Sizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		journal:  journal,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := m.status
	status.Dependencies = make(map[string]bool, len(m.status.Dependencies))
	for name, up := range m.status.Dependencies {
		status.Dependencies[name] = up
	}
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency concurrently and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	results := make([]bool, len(m.checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range m.checks {
		g.Go(func() error {
			results[i] = m.probe(gctx, check)
			return nil
		})
	}
	_ = g.Wait()

	status := Status{
		Dependencies: make(map[string]bool, len(m.checks)),
		Online:       true,
		LastCheck:    time.Now().UTC(),
	}
	for i, check := range m.checks {
		status.Dependencies[check.Name] = results[i]
		if !results[i] && !check.Optional {
			status.Online = false
		}
	}
	if m.journal != nil {
		size, err := m.journal.Size()
		if err != nil {
			m.logger.Warn("journal size check failed", zap.Error(err))
		}
		status.JournalSize = size
	}

	m.mu.Lock()
	if m.status.Online != status.Online && !m.status.LastCheck.IsZero() {
		m.logger.Warn("dependency status changed", zap.Bool("online", status.Online))
	}
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) probe(ctx context.Context, check Check) bool {
	if check.Pinger == nil {
		return false
	}
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := check.Pinger.Ping(ctx); err != nil {
		m.logger.Debug("dependency probe failed", zap.String("dependency", check.Name), zap.Error(err))
		return false
	}
	return true
}
