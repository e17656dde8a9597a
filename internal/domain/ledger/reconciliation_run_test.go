package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	assert.False(t, Summary{}.HasChanges())
	assert.True(t, Summary{SalesSynced: 1}.HasChanges())
	assert.True(t, Summary{CustomersCreated: 1}.HasChanges())
	assert.True(t, Summary{Failed: []string{"SALE-1"}}.HasChanges())

	s := Summary{SalesSynced: 2, PurchasesSynced: 1, ExpensesSynced: 3, SuppliersCreated: 1}
	assert.Equal(t, 6, s.TransactionsCreated())
	assert.Equal(t, 7, s.Created())
}

func TestReconciliationRun(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		run := StartReconciliationRun(RunTriggerScheduled)
		assert.Equal(t, RunStatusRunning, run.Status)
		assert.Zero(t, run.Duration())

		run.Complete(Summary{SalesSynced: 1})
		assert.Equal(t, RunStatusCompleted, run.Status)
		require.NotNil(t, run.FinishedAt)
		assert.True(t, run.Status.IsTerminal())
	})

	t.Run("partial", func(t *testing.T) {
		run := StartReconciliationRun(RunTriggerManual)
		run.Complete(Summary{SalesSynced: 1, Failed: []string{"SALE-2"}})
		assert.Equal(t, RunStatusPartial, run.Status)
	})

	t.Run("all failed", func(t *testing.T) {
		run := StartReconciliationRun(RunTriggerManual)
		run.Complete(Summary{Failed: []string{"SALE-2"}})
		assert.Equal(t, RunStatusFailed, run.Status)
	})

	t.Run("aborted", func(t *testing.T) {
		run := StartReconciliationRun("bogus")
		assert.Equal(t, RunTriggerManual, run.Trigger)

		run.Fail(errors.New("store unavailable"))
		assert.Equal(t, RunStatusFailed, run.Status)
		assert.Equal(t, "store unavailable", run.Error)

		event := NewReconciliationFailedEvent(run, true)
		assert.True(t, event.Notify)
		assert.Equal(t, EventTypeReconciliationFailed, event.EventType())
	})
}
