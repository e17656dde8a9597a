package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_List(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.On("Accounts", mock.Anything).Return(&appledger.AccountsResponse{
		Accounts: []appledger.AccountBalance{
			{Account: "Cash", AccountType: ledger.AccountTypeCash, Balance: decimal.NewFromInt(1500)},
			{Account: "M-Pesa", AccountType: ledger.AccountTypeMobile, Balance: decimal.NewFromInt(-200)},
		},
		Total:    decimal.NewFromInt(1300),
		Currency: "KES",
		AsOf:     time.Now(),
	}, nil)

	w := api.do(http.MethodGet, "/api/v1/accounts", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got appledger.AccountsResponse
	decode(t, w, &got)
	require.Len(t, got.Accounts, 2)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(1300)))
	assert.Equal(t, "KES", got.Currency)
}

func TestAccountHandler_Balance(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.On("AccountBalance", mock.Anything, "Petty Cash").
		Return(&appledger.AccountBalance{Account: "Petty Cash", Balance: decimal.NewFromInt(40)}, nil)

	w := api.do(http.MethodGet, "/api/v1/accounts/Petty%20Cash/balance", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got appledger.AccountBalance
	decode(t, w, &got)
	assert.Equal(t, "Petty Cash", got.Account)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(40)))
}

func TestAccountHandler_Balance_InvalidAccount(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.On("AccountBalance", mock.Anything, " ").
		Return(nil, shared.NewDomainError("INVALID_ACCOUNT", "Account cannot be empty"))

	w := api.do(http.MethodGet, "/api/v1/accounts/%20/balance", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode(t, w, nil).Error.Code)
}

func TestAccountHandler_Alerts(t *testing.T) {
	t.Run("lists alerts", func(t *testing.T) {
		api := newTestAPI(t)
		api.accounts.On("Alerts", mock.Anything).Return([]appledger.Alert{
			{ID: appledger.AlertChequesOverdue, Message: "1 cheque(s) overdue", Severity: appledger.SeverityError},
		}, nil)

		w := api.do(http.MethodGet, "/api/v1/alerts", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var got []appledger.Alert
		decode(t, w, &got)
		require.Len(t, got, 1)
		assert.Equal(t, appledger.AlertChequesOverdue, got[0].ID)
	})

	t.Run("no alerts is an empty list", func(t *testing.T) {
		api := newTestAPI(t)
		api.accounts.On("Alerts", mock.Anything).Return([]appledger.Alert(nil), nil)

		w := api.do(http.MethodGet, "/api/v1/alerts", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
	})

	t.Run("snapshot unavailable", func(t *testing.T) {
		api := newTestAPI(t)
		api.accounts.On("Alerts", mock.Anything).Return(nil, errors.New("failed to list sales"))

		w := api.do(http.MethodGet, "/api/v1/alerts", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
