package ledger

import (
	"testing"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCalculator_ComputeBalance(t *testing.T) {
	txns := []*ledger.Transaction{
		manualTxn(ledger.TransactionTypeInflow, "Cash", 5000, day(2026, 10, 1)),
		manualTxn(ledger.TransactionTypeOutflow, "Cash", 1200, day(2026, 10, 2)),
		manualTxn(ledger.TransactionTypeInflow, "Equity Bank", 700, day(2026, 10, 2)),
		manualTxn(ledger.TransactionTypeInflow, "KCB", 300, day(2026, 10, 2)),
	}
	sales := []trade.Sale{
		{ID: "1", Amount: amt(2000), Status: trade.StatusPaid, Method: trade.PaymentMethodCash},
		{ID: "2", Amount: amt(900), Status: "Pending", Method: trade.PaymentMethodCash},
		{ID: "3", Amount: amt(450), Status: trade.StatusPaid, Method: trade.PaymentMethodMPesa},
		{ID: "4", Amount: amt(800), Status: trade.StatusPaid, Method: trade.PaymentMethodCheque},
		{ID: "5", Status: trade.StatusPaid, Method: trade.PaymentMethodCash},
		{ID: "6", Amount: amt(40), Status: trade.StatusPaid, Method: "barter"},
	}
	purchases := []trade.Purchase{
		{ID: "1", Amount: amt(600), Status: trade.StatusPaid, PaymentMethod: trade.PaymentMethodCash},
		{ID: "2", Amount: amt(100), Status: trade.StatusPaid, PaymentMethod: trade.PaymentMethodBank},
	}

	calc := NewBalanceCalculator(ledger.NewBucketResolver("KCB"))

	tests := []struct {
		account string
		want    int64
	}{
		{"Cash", 5000 - 1200 + 2000 + 40 - 600},
		{"M-Pesa", 450},
		{"Bank", 800 - 100},
		{"Equity Bank", 700 + 800 - 100},
		{"KCB", 300 + 800 - 100},
		{"Petty Cash", 0},
		{"cash", 0},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			got := calc.ComputeBalance(tt.account, txns, sales, purchases)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}

// Source records use the same total method mapping as the reconciler: cheques
// settle to Bank and a missing or unknown method settles to Cash.
func TestBalanceCalculator_SourceMethodMapping(t *testing.T) {
	sales := []trade.Sale{
		{ID: "1", Amount: amt(800), Status: trade.StatusPaid, Method: trade.PaymentMethodCheque},
		{ID: "2", Amount: amt(250), Status: trade.StatusPaid},
		{ID: "3", Amount: amt(40), Status: trade.StatusPaid, Method: "barter"},
	}
	purchases := []trade.Purchase{
		{ID: "1", Amount: amt(300), Status: trade.StatusPaid, PaymentMethod: trade.PaymentMethodCheque},
		{ID: "2", Amount: amt(15), Status: trade.StatusPaid},
	}
	calc := NewBalanceCalculator(ledger.NewBucketResolver())

	assert.True(t, calc.ComputeBalance("Bank", nil, sales, purchases).Equal(decimal.NewFromInt(800-300)))
	assert.True(t, calc.ComputeBalance("Cash", nil, sales, purchases).Equal(decimal.NewFromInt(250+40-15)))
	assert.True(t, calc.ComputeBalance("M-Pesa", nil, sales, purchases).IsZero())

	for _, s := range sales {
		txn, err := ledger.NewSaleTransaction(s)
		require.NoError(t, err)
		bucket, ok := ledger.NewBucketResolver().Resolve(txn.Account)
		require.True(t, ok)
		assert.Equal(t, ledger.BucketForMethod(s.Method), bucket, "sale %s", s.ID)
	}
}

func TestBalanceCalculator_UnconfiguredBankAlias(t *testing.T) {
	txns := []*ledger.Transaction{manualTxn(ledger.TransactionTypeInflow, "KCB", 300, day(2026, 10, 2))}
	sales := []trade.Sale{{ID: "1", Amount: amt(800), Status: trade.StatusPaid, Method: trade.PaymentMethodBank}}

	got := NewBalanceCalculator(nil).ComputeBalance("KCB", txns, sales, nil)
	assert.True(t, got.Equal(decimal.NewFromInt(300)))
}

func TestBalanceCalculator_Balances(t *testing.T) {
	txns := []*ledger.Transaction{
		manualTxn(ledger.TransactionTypeInflow, "Zeta Sacco", 10, day(2026, 10, 1)),
		manualTxn(ledger.TransactionTypeInflow, "Cash", 20, day(2026, 10, 1)),
		manualTxn(ledger.TransactionTypeInflow, "Cash", 30, day(2026, 10, 1)),
		manualTxn(ledger.TransactionTypeOutflow, "Airtel Money", 5, day(2026, 10, 1)),
	}
	txns[3].InstitutionID = "airtel-money"
	txns[3].AccountType = ledger.AccountTypeMobile

	balances := NewBalanceCalculator(nil).Balances(txns, nil, nil)

	names := make([]string, 0, len(balances))
	for _, b := range balances {
		names = append(names, b.Account)
	}
	assert.Equal(t, []string{"Cash", "M-Pesa", "Bank", "Airtel Money", "Zeta Sacco"}, names)

	cash, ok := FindBalance(balances, "Cash")
	require.True(t, ok)
	assert.Equal(t, 2, cash.Transactions)
	assert.True(t, cash.Balance.Equal(decimal.NewFromInt(50)))

	mpesa, _ := FindBalance(balances, "M-Pesa")
	assert.Equal(t, ledger.AccountTypeMobile, mpesa.AccountType)
	require.NotNil(t, mpesa.Institution)
	assert.Equal(t, "mpesa", mpesa.Institution.ID)

	airtel, _ := FindBalance(balances, "Airtel Money")
	assert.True(t, airtel.Balance.Equal(decimal.NewFromInt(-5)))
	assert.Equal(t, ledger.AccountTypeMobile, airtel.AccountType)

	_, ok = FindBalance(balances, "Nowhere")
	assert.False(t, ok)
}
