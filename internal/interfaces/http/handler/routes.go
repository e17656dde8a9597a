package handler

import "github.com/erp/cashbook/internal/interfaces/http/router"

// Handlers bundles every API handler for route registration
type Handlers struct {
	System         *SystemHandler
	Institution    *InstitutionHandler
	Transaction    *TransactionHandler
	Account        *AccountHandler
	Reconciliation *ReconciliationHandler
}

// Groups returns the route groups of the API, relative to /api/v1
func (h Handlers) Groups() []*router.DomainGroup {
	system := router.NewDomainGroup("system", "/health").
		GET("", h.System.Health)

	institutions := router.NewDomainGroup("institutions", "/institutions").
		GET("", h.Institution.List).
		GET("/:id", h.Institution.Get)

	transactions := router.NewDomainGroup("transactions", "/transactions").
		GET("", h.Transaction.List).
		POST("", h.Transaction.Create).
		GET("/export", h.Transaction.Export).
		POST("/export/archive", h.Transaction.Archive).
		GET("/:id", h.Transaction.Get).
		PUT("/:id", h.Transaction.Update).
		DELETE("/:id", h.Transaction.Delete).
		POST("/:id/clear", h.Transaction.Clear).
		POST("/:id/bounce", h.Transaction.Bounce)

	accounts := router.NewDomainGroup("accounts", "/accounts").
		GET("", h.Account.List).
		GET("/:name/balance", h.Account.Balance)

	alerts := router.NewDomainGroup("alerts", "/alerts").
		GET("", h.Account.Alerts)

	reconciliation := router.NewDomainGroup("reconciliation", "/reconciliation").
		POST("", h.Reconciliation.Reconcile).
		GET("/runs", h.Reconciliation.Runs)

	return []*router.DomainGroup{system, institutions, transactions, accounts, alerts, reconciliation}
}
