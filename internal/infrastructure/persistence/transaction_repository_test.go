package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestTransaction(t *testing.T, mutate func(*ledger.Details)) *ledger.Transaction {
	t.Helper()
	d := ledger.Details{
		Type:        ledger.TransactionTypeInflow,
		Description: "Counter sales",
		Account:     "Cash",
		Amount:      decimal.NewFromInt(1000),
		Date:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(&d)
	}
	txn, err := ledger.NewTransaction(d)
	require.NoError(t, err)
	return txn
}

func TestGormTransactionRepository_FindByID(t *testing.T) {
	t.Run("finds existing transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "type", "description", "account", "account_type", "amount", "date", "reference", "category", "version"}).
			AddRow(id, "outflow", "Rent", "Equity Bank", "bank", "30000", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), "RENT-10", "Rent", 2)

		mock.ExpectQuery(`SELECT \* FROM "ledger_transactions" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		txn, err := repo.FindByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, txn.ID)
		assert.Equal(t, ledger.TransactionTypeOutflow, txn.Type)
		assert.Equal(t, "RENT-10", txn.Reference)
		assert.True(t, decimal.NewFromInt(30000).Equal(txn.Amount))
		assert.Equal(t, 2, txn.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing rows to ErrNotFound", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "ledger_transactions" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		txn, err := repo.FindByID(context.Background(), id)

		assert.Nil(t, txn)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransactionRepository_ExistsByReference(t *testing.T) {
	t.Run("counts matching references", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "ledger_transactions" WHERE reference = \$1`).
			WithArgs("SALE-S1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByReference(context.Background(), "SALE-S1")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty reference never queries", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		exists, err := repo.ExistsByReference(context.Background(), "")

		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_Delete(t *testing.T) {
	t.Run("deletes existing row", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		id := uuid.New()
		mock.ExpectExec(`DELETE FROM "ledger_transactions" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is ErrNotFound", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		id := uuid.New()
		mock.ExpectExec(`DELETE FROM "ledger_transactions" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), id), shared.ErrNotFound)
	})
}

func TestGormTransactionRepository_SaveAndReload(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormTransactionRepository(db.DB)
	ctx := context.Background()

	txn := newTestTransaction(t, func(d *ledger.Details) {
		d.Type = ledger.TransactionTypeOutflow
		d.Description = "Cheque to landlord"
		d.Account = "Equity Bank"
		d.InstitutionID = "equity"
		d.Amount = decimal.RequireFromString("30000.5")
		d.Reference = "CHQ-77"
		d.PaymentMethod = ledger.PaymentMethodCheque
		d.ChequeNumber = "000077"
		d.Payee = "Landlord"
	})
	require.NoError(t, repo.Save(ctx, txn))

	loaded, err := repo.FindByReference(ctx, "CHQ-77")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, loaded.ID)
	assert.Equal(t, ledger.ChequeStatusPending, loaded.Status)
	assert.Equal(t, ledger.AccountTypeBank, loaded.AccountType)
	assert.True(t, decimal.RequireFromString("30000.5").Equal(loaded.Amount))
	assert.True(t, loaded.IsOn(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)))

	require.NoError(t, loaded.ClearCheque())
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ChequeStatusCleared, reloaded.Status)
	assert.Equal(t, loaded.Version, reloaded.Version)
}

func TestGormTransactionRepository_DuplicateReference(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormTransactionRepository(db.DB)
	ctx := context.Background()

	first := newTestTransaction(t, func(d *ledger.Details) { d.Reference = "INV-1" })
	second := newTestTransaction(t, func(d *ledger.Details) { d.Reference = "INV-1" })

	require.NoError(t, repo.Create(ctx, first))
	assert.ErrorIs(t, repo.Create(ctx, second), shared.ErrAlreadyExists)
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrAlreadyExists)

	// transactions without a reference never collide
	require.NoError(t, repo.Create(ctx, newTestTransaction(t, nil)))
	require.NoError(t, repo.Create(ctx, newTestTransaction(t, nil)))

	count, err := repo.Count(ctx, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormTransactionRepository_FindWithFilter(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormTransactionRepository(db.DB)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }
	seed := []ledger.Details{
		{Type: ledger.TransactionTypeInflow, Description: "Counter sales", Account: "Cash", Amount: decimal.NewFromInt(500), Date: day(1)},
		{Type: ledger.TransactionTypeOutflow, Description: "Office rent", Account: "Equity Bank", Amount: decimal.NewFromInt(30000), Date: day(2), Category: "Rent"},
		{Type: ledger.TransactionTypeInflow, Description: "Till float", Account: "M-Pesa", Amount: decimal.NewFromInt(200), Date: day(3), PaymentMethod: ledger.PaymentMethodMPesa},
		{Type: ledger.TransactionTypeOutflow, Description: "Fuel", Account: "Cash", Amount: decimal.NewFromInt(1500), Date: day(4), Payee: "Shell Westlands"},
	}
	for _, d := range seed {
		txn, err := ledger.NewTransaction(d)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, txn))
	}

	inflow := ledger.TransactionTypeInflow
	from, to := day(2), day(3)

	tests := []struct {
		name   string
		filter ledger.TransactionFilter
		want   []string
	}{
		{"newest first by default", ledger.TransactionFilter{}, []string{"Fuel", "Till float", "Office rent", "Counter sales"}},
		{"by type", ledger.TransactionFilter{Type: &inflow}, []string{"Till float", "Counter sales"}},
		{"by account", ledger.TransactionFilter{Account: "Cash"}, []string{"Fuel", "Counter sales"}},
		{"by category", ledger.TransactionFilter{Category: "Rent"}, []string{"Office rent"}},
		{"search is case insensitive", ledger.TransactionFilter{Filter: shared.Filter{Search: "SHELL"}}, []string{"Fuel"}},
		{"date range is inclusive", ledger.TransactionFilter{FromDate: &from, ToDate: &to}, []string{"Till float", "Office rent"}},
		{"sort by amount ascending", ledger.TransactionFilter{Filter: shared.Filter{OrderBy: "amount", OrderDir: "asc"}}, []string{"Till float", "Counter sales", "Fuel", "Office rent"}},
		{"second page", ledger.TransactionFilter{Filter: shared.Filter{Page: 2, PageSize: 3}}, []string{"Counter sales"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := repo.FindWithFilter(ctx, tt.filter)
			require.NoError(t, err)

			got := make([]string, len(txns))
			for i, txn := range txns {
				got[i] = txn.Description
			}
			assert.Equal(t, tt.want, got)
		})
	}

	count, err := repo.Count(ctx, ledger.TransactionFilter{Account: "Cash", Filter: shared.Filter{Page: 2, PageSize: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
