package handler

import (
	"context"
	"errors"
	"time"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/infrastructure/scheduler"
	"github.com/erp/cashbook/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// ManualTrigger starts an operator-requested reconciliation
type ManualTrigger interface {
	TriggerManual(ctx context.Context) (*ledger.Summary, error)
}

// ReconciliationHandler serves manual reconciliation and the run history
type ReconciliationHandler struct {
	BaseHandler
	trigger ManualTrigger
	runs    ledger.ReconciliationRunRepository
}

// NewReconciliationHandler creates a ReconciliationHandler
func NewReconciliationHandler(trigger ManualTrigger, runs ledger.ReconciliationRunRepository) *ReconciliationHandler {
	return &ReconciliationHandler{trigger: trigger, runs: runs}
}

// ReconcileResponse is the outcome of a manual run
type ReconcileResponse struct {
	ledger.Summary
	TransactionsCreated int `json:"transactions_created"`
}

// RunResponse is one entry of the run history
type RunResponse struct {
	ID         uuid.UUID      `json:"id"`
	Trigger    string         `json:"trigger"`
	Status     string         `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Summary    ledger.Summary `json:"summary"`
	Error      string         `json:"error,omitempty"`
}

// RunsQuery limits the history
type RunsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Reconcile runs a pass now and returns its summary.
// POST /reconciliation
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	summary, err := h.trigger.TriggerManual(c.Request.Context())
	switch {
	case errors.Is(err, appledger.ErrReconciliationInProgress):
		h.ErrorWithCode(c, dto.ErrCodeConflict, "A reconciliation is already in progress")
		return
	case errors.Is(err, scheduler.ErrTriggeredTooSoon):
		h.ErrorWithCode(c, dto.ErrCodeConflict, "A reconciliation was started moments ago, try again shortly")
		return
	case errors.Is(err, scheduler.ErrTriggerNotRunning):
		h.ErrorWithCode(c, dto.ErrCodeUnavailable, "Reconciliation is disabled")
		return
	case err != nil:
		h.HandleError(c, err)
		return
	}

	h.Success(c, ReconcileResponse{
		Summary:             *summary,
		TransactionsCreated: summary.TransactionsCreated(),
	})
}

// Runs returns the most recent runs, newest first.
// GET /reconciliation/runs?limit=
func (h *ReconciliationHandler) Runs(c *gin.Context) {
	var q RunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultRunsLimit
	}
	limit = min(limit, maxRunsLimit)

	runs, err := h.runs.FindRecent(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]RunResponse, len(runs))
	for i, run := range runs {
		out[i] = toRunResponse(run)
	}
	h.Success(c, out)
}

func toRunResponse(run *ledger.ReconciliationRun) RunResponse {
	summary := run.Summary
	if summary.Failed == nil {
		summary.Failed = []string{}
	}
	return RunResponse{
		ID:         run.ID,
		Trigger:    string(run.Trigger),
		Status:     string(run.Status),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMS: run.Duration().Milliseconds(),
		Summary:    summary,
		Error:      run.Error,
	}
}
