// Package scheduler drives background reconciliation: a periodic ticker, an
// optional run on start and operator-requested manual runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/ledger"
	"go.uber.org/zap"
)

// Reconciler runs one reconciliation pass
type Reconciler interface {
	Reconcile(ctx context.Context, trigger ledger.RunTrigger) (*ledger.Summary, error)
}

// ReconcileTriggerConfig holds configuration for the reconcile trigger
type ReconcileTriggerConfig struct {
	// Interval between scheduled runs
	Interval time.Duration

	// MinSpacing is the minimum time between two run starts, whatever triggered them
	MinSpacing time.Duration

	// RunOnStart runs a startup pass as soon as the trigger starts
	RunOnStart bool

	// Timeout bounds a single run. Zero means no deadline.
	Timeout time.Duration
}

// DefaultReconcileTriggerConfig returns default trigger configuration
func DefaultReconcileTriggerConfig() ReconcileTriggerConfig {
	return ReconcileTriggerConfig{
		Interval:   5 * time.Minute,
		MinSpacing: 30 * time.Second,
		RunOnStart: true,
		Timeout:    5 * time.Minute,
	}
}

// Validate checks the configuration
func (c ReconcileTriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.MinSpacing < 0 {
		return fmt.Errorf("%w: min spacing cannot be negative", ErrInvalidConfig)
	}
	if c.Interval < c.MinSpacing {
		return fmt.Errorf("%w: interval %s is shorter than min spacing %s", ErrInvalidConfig, c.Interval, c.MinSpacing)
	}
	return nil
}

// ReconcileTrigger starts reconciliation runs on a timer and on request
type ReconcileTrigger struct {
	config     ReconcileTriggerConfig
	reconciler Reconciler
	logger     *zap.Logger
	now        func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastStart time.Time
}

// NewReconcileTrigger creates a new reconcile trigger
func NewReconcileTrigger(config ReconcileTriggerConfig, reconciler Reconciler, logger *zap.Logger) (*ReconcileTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileTrigger{
		config:     config,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Start starts the trigger loop
func (t *ReconcileTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Reconcile trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Duration("min_spacing", t.config.MinSpacing),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight scheduled run to finish
func (t *ReconcileTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Reconcile trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (t *ReconcileTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

// TriggerManual runs a reconciliation now and returns its summary. It is
// refused within the minimum spacing of the previous start.
func (t *ReconcileTrigger) TriggerManual(ctx context.Context) (*ledger.Summary, error) {
	if !t.IsRunning() {
		return nil, ErrTriggerNotRunning
	}
	if err := t.reserve(); err != nil {
		return nil, err
	}
	return t.run(ctx, ledger.RunTriggerManual)
}

func (t *ReconcileTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.tick(ctx, ledger.RunTriggerStartup)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx, ledger.RunTriggerScheduled)
		}
	}
}

// tick runs a background pass. Failures are already logged by the reconciler.
// A pass that has started runs to completion even if the loop is stopped.
func (t *ReconcileTrigger) tick(ctx context.Context, trigger ledger.RunTrigger) {
	if err := t.reserve(); err != nil {
		t.logger.Debug("Skipping reconciliation", zap.String("trigger", string(trigger)), zap.Error(err))
		return
	}
	if _, err := t.run(context.WithoutCancel(ctx), trigger); errors.Is(err, appledger.ErrReconciliationInProgress) {
		t.logger.Debug("Reconciliation already in progress", zap.String("trigger", string(trigger)))
	}
}

// reserve records a run start unless the previous one was too recent
func (t *ReconcileTrigger) reserve() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.lastStart.IsZero() && now.Sub(t.lastStart) < t.config.MinSpacing {
		return ErrTriggeredTooSoon
	}
	t.lastStart = now
	return nil
}

func (t *ReconcileTrigger) run(ctx context.Context, trigger ledger.RunTrigger) (*ledger.Summary, error) {
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}
	return t.reconciler.Reconcile(ctx, trigger)
}
