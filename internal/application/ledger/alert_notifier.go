package ledger

import (
	"context"
	"fmt"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertNotifier re-evaluates alerts after reconciliation and surfaces
// failures that should reach the operator.
type AlertNotifier struct {
	state     SnapshotSource
	balances  *BalanceCalculator
	evaluator *AlertEvaluator
	logger    *zap.Logger
}

// NewAlertNotifier creates a new AlertNotifier
func NewAlertNotifier(state SnapshotSource, balances *BalanceCalculator, evaluator *AlertEvaluator, logger *zap.Logger) *AlertNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertNotifier{
		state:     state,
		balances:  balances,
		evaluator: evaluator,
		logger:    logger.Named("alerts"),
	}
}

// EventTypes returns the event types this handler is interested in
func (n *AlertNotifier) EventTypes() []string {
	return []string{ledger.EventTypeReconciliationCompleted, ledger.EventTypeReconciliationFailed}
}

// Handle processes reconciliation events
func (n *AlertNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.ReconciliationCompletedEvent:
		n.reportAlerts(e)
		return nil
	case *ledger.ReconciliationFailedEvent:
		if e.Notify {
			n.logger.Error("reconciliation could not run",
				zap.String("run_id", e.RunID.String()),
				zap.String("trigger", string(e.Trigger)),
				zap.String("error", e.Error),
			)
		}
		return nil
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (n *AlertNotifier) reportAlerts(e *ledger.ReconciliationCompletedEvent) {
	snap := n.state.Snapshot()
	balances := n.balances.Balances(snap.Transactions, snap.Sales, snap.Purchases)
	for _, a := range n.evaluator.Evaluate(snap.Transactions, snap.Sales, snap.Purchases, balances) {
		fields := []zap.Field{
			zap.String("alert_id", a.ID),
			zap.String("run_id", e.RunID.String()),
			zap.String("message", a.Message),
		}
		switch a.Severity {
		case SeverityError:
			n.logger.Error("ledger alert", fields...)
		case SeverityWarning:
			n.logger.Warn("ledger alert", fields...)
		default:
			n.logger.Info("ledger alert", fields...)
		}
	}
}
