package ledger

import (
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/google/uuid"
)

// Summary is the outcome of one reconciliation pass
type Summary struct {
	CustomersCreated int      `json:"customers_created"`
	SuppliersCreated int      `json:"suppliers_created"`
	SalesSynced      int      `json:"sales_synced"`
	PurchasesSynced  int      `json:"purchases_synced"`
	ExpensesSynced   int      `json:"expenses_synced"`
	Failed           []string `json:"failed"`
}

// TransactionsCreated returns the number of ledger entries written
func (s Summary) TransactionsCreated() int {
	return s.SalesSynced + s.PurchasesSynced + s.ExpensesSynced
}

// Created returns the number of records of any kind written
func (s Summary) Created() int {
	return s.TransactionsCreated() + s.CustomersCreated + s.SuppliersCreated
}

// HasChanges returns false when the pass found nothing to do
func (s Summary) HasChanges() bool {
	return s.Created() > 0 || len(s.Failed) > 0
}

// RecordFailure appends a failed record identifier
func (s *Summary) RecordFailure(id string) {
	s.Failed = append(s.Failed, id)
}

// RunTrigger says what started a reconciliation pass
type RunTrigger string

const (
	RunTriggerStartup   RunTrigger = "startup"
	RunTriggerScheduled RunTrigger = "scheduled"
	RunTriggerManual    RunTrigger = "manual"
)

// IsValid checks if the trigger is a valid RunTrigger
func (t RunTrigger) IsValid() bool {
	switch t {
	case RunTriggerStartup, RunTriggerScheduled, RunTriggerManual:
		return true
	}
	return false
}

// RunStatus represents the state of a reconciliation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// IsTerminal returns true once the run has finished
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusPartial || s == RunStatusFailed
}

// ReconciliationRun is the audit record of one reconciliation pass
type ReconciliationRun struct {
	shared.BaseEntity
	Trigger    RunTrigger
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    Summary
	Error      string
}

// StartReconciliationRun opens a new run record
func StartReconciliationRun(trigger RunTrigger) *ReconciliationRun {
	if !trigger.IsValid() {
		trigger = RunTriggerManual
	}
	return &ReconciliationRun{
		BaseEntity: shared.NewBaseEntity(),
		Trigger:    trigger,
		Status:     RunStatusRunning,
		StartedAt:  time.Now(),
	}
}

// Complete closes the run with its summary. A run with failed records but
// some progress is partial; a run where every attempted record failed is failed.
func (r *ReconciliationRun) Complete(summary Summary) {
	now := time.Now()
	r.Summary = summary
	r.FinishedAt = &now
	r.UpdatedAt = now

	switch {
	case len(summary.Failed) == 0:
		r.Status = RunStatusCompleted
	case summary.Created() > 0:
		r.Status = RunStatusPartial
	default:
		r.Status = RunStatusFailed
	}
}

// Fail closes the run after a failure that aborted the whole pass
func (r *ReconciliationRun) Fail(err error) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.UpdatedAt = now
	if err != nil {
		r.Error = err.Error()
	}
}

// Duration returns how long the run took, or 0 while it is running
func (r *ReconciliationRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ReconciliationCompletedEvent is published when a pass changed something
type ReconciliationCompletedEvent struct {
	shared.BaseDomainEvent
	RunID   uuid.UUID  `json:"run_id"`
	Trigger RunTrigger `json:"trigger"`
	Summary Summary    `json:"summary"`
}

// NewReconciliationCompletedEvent creates a new ReconciliationCompletedEvent
func NewReconciliationCompletedEvent(run *ReconciliationRun) *ReconciliationCompletedEvent {
	return &ReconciliationCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReconciliationCompleted, "ReconciliationRun", run.ID),
		RunID:           run.ID,
		Trigger:         run.Trigger,
		Summary:         run.Summary,
	}
}

// ReconciliationFailedEvent is published when a pass aborts. Notify is set
// only when the user should be told, which is on the first run.
type ReconciliationFailedEvent struct {
	shared.BaseDomainEvent
	RunID   uuid.UUID  `json:"run_id"`
	Trigger RunTrigger `json:"trigger"`
	Error   string     `json:"error"`
	Notify  bool       `json:"notify"`
}

// NewReconciliationFailedEvent creates a new ReconciliationFailedEvent
func NewReconciliationFailedEvent(run *ReconciliationRun, notify bool) *ReconciliationFailedEvent {
	return &ReconciliationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReconciliationFailed, "ReconciliationRun", run.ID),
		RunID:           run.ID,
		Trigger:         run.Trigger,
		Error:           run.Error,
		Notify:          notify,
	}
}
