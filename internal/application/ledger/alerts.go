package ledger

import (
	"fmt"
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// Severity of an alert
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert IDs
const (
	AlertCashLow           = "cash-low"
	AlertChequesPending    = "cheques-pending"
	AlertChequesOverdue    = "cheques-overdue"
	AlertLargeTransactions = "large-transactions"
)

var (
	// LowCashThreshold is the upper bound of the cash-low alert
	LowCashThreshold = decimal.NewFromInt(100_000)
	// LargeTransactionThreshold is the amount a same-day transaction must exceed
	LargeTransactionThreshold = decimal.NewFromInt(500_000)
)

// Alert is a dashboard notice derived from the ledger
type Alert struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// AlertEvaluator derives threshold alerts from the ledger
type AlertEvaluator struct {
	balances *BalanceCalculator
	currency string
	now      func() time.Time
}

// AlertOption configures an AlertEvaluator
type AlertOption func(*AlertEvaluator)

// WithClock overrides the evaluator clock
func WithClock(now func() time.Time) AlertOption {
	return func(e *AlertEvaluator) {
		e.now = now
	}
}

// NewAlertEvaluator creates an evaluator that formats amounts in currency
func NewAlertEvaluator(balances *BalanceCalculator, currency string, opts ...AlertOption) *AlertEvaluator {
	if balances == nil {
		balances = NewBalanceCalculator(nil)
	}
	e := &AlertEvaluator{
		balances: balances,
		currency: currency,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the alerts that currently apply. The Cash balance is taken
// from balances when present and computed otherwise.
func (e *AlertEvaluator) Evaluate(
	txns []*ledger.Transaction,
	sales []trade.Sale,
	purchases []trade.Purchase,
	balances []AccountBalance,
) []Alert {
	now := e.now()
	alerts := make([]Alert, 0, 4)

	cash, ok := FindBalance(balances, ledger.AccountCash)
	cashBalance := cash.Balance
	if !ok {
		cashBalance = e.balances.ComputeBalance(ledger.AccountCash, txns, sales, purchases)
	}
	if cashBalance.IsPositive() && cashBalance.LessThan(LowCashThreshold) {
		alerts = append(alerts, Alert{
			ID:       AlertCashLow,
			Message:  fmt.Sprintf("Cash balance is low: %s", FormatAmount(cashBalance, e.currency)),
			Severity: SeverityWarning,
		})
	}

	var pending, overdue, large int
	largeTotal := decimal.Zero
	for _, t := range txns {
		if t.IsPendingCheque() {
			pending++
			if t.IsOverdueCheque(now) {
				overdue++
			}
		}
		if t.IsOn(now) && t.Amount.GreaterThan(LargeTransactionThreshold) {
			large++
			largeTotal = largeTotal.Add(t.Amount)
		}
	}

	if pending > 0 {
		alerts = append(alerts, Alert{
			ID:       AlertChequesPending,
			Message:  fmt.Sprintf("%d cheque(s) pending clearance", pending),
			Severity: SeverityInfo,
		})
	}
	if overdue > 0 {
		alerts = append(alerts, Alert{
			ID:       AlertChequesOverdue,
			Message:  fmt.Sprintf("%d cheque(s) pending for more than 7 days", overdue),
			Severity: SeverityError,
		})
	}
	if large > 0 {
		alerts = append(alerts, Alert{
			ID: AlertLargeTransactions,
			Message: fmt.Sprintf("%d large transaction(s) today totalling %s",
				large, FormatAmount(largeTotal, e.currency)),
			Severity: SeverityInfo,
		})
	}

	return alerts
}
