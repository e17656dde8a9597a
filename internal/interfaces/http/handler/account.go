package handler

import (
	"context"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// AccountService computes balances and alerts over the ledger snapshot
type AccountService interface {
	Accounts(ctx context.Context) (*appledger.AccountsResponse, error)
	AccountBalance(ctx context.Context, accountName string) (*appledger.AccountBalance, error)
	Alerts(ctx context.Context) ([]appledger.Alert, error)
}

// AccountHandler serves the accounts dashboard
type AccountHandler struct {
	BaseHandler
	service AccountService
}

// NewAccountHandler creates an AccountHandler
func NewAccountHandler(service AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// List returns every account balance and the grand total
func (h *AccountHandler) List(c *gin.Context) {
	resp, err := h.service.Accounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Balance returns one account's balance
func (h *AccountHandler) Balance(c *gin.Context) {
	balance, err := h.service.AccountBalance(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Alerts returns the active dashboard alerts. An empty ledger has none.
func (h *AccountHandler) Alerts(c *gin.Context) {
	alerts, err := h.service.Alerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if alerts == nil {
		alerts = []appledger.Alert{}
	}
	h.Success(c, alerts)
}
