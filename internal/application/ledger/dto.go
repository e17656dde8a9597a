package ledger

import (
	"strings"
	"time"

	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRequest is the body of a manual entry or a full update
type TransactionRequest struct {
	Type          string          `json:"type" binding:"required,oneof=inflow outflow"`
	Description   string          `json:"description" binding:"required,min=1,max=500"`
	Account       string          `json:"account" binding:"required,min=1,max=100"`
	AccountType   string          `json:"account_type" binding:"omitempty,oneof=cash bank mobile digital"`
	InstitutionID string          `json:"institution_id" binding:"max=50"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date" binding:"required"`
	Reference     string          `json:"reference" binding:"max=100"`
	Category      string          `json:"category" binding:"max=100"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash mpesa m-pesa bank cheque"`
	Status        string          `json:"status" binding:"omitempty,oneof=pending cleared bounced"`
	ChequeNumber  string          `json:"cheque_number" binding:"max=50"`
	Payee         string          `json:"payee" binding:"max=200"`
	Bank          string          `json:"bank" binding:"max=100"`
	BankName      string          `json:"bank_name" binding:"max=200"`
}

func (r TransactionRequest) toDetails() (ledger.Details, error) {
	date, err := ledger.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return ledger.Details{}, shared.NewDomainError("INVALID_DATE", "Date must be formatted as YYYY-MM-DD")
	}

	d := ledger.Details{
		Type:          ledger.TransactionType(strings.TrimSpace(r.Type)),
		Description:   r.Description,
		Account:       r.Account,
		AccountType:   ledger.AccountType(strings.TrimSpace(r.AccountType)),
		InstitutionID: r.InstitutionID,
		Amount:        r.Amount,
		Date:          date,
		Reference:     r.Reference,
		Category:      r.Category,
		Status:        ledger.ChequeStatus(strings.TrimSpace(r.Status)),
		ChequeNumber:  r.ChequeNumber,
		Payee:         r.Payee,
		Bank:          r.Bank,
		BankName:      r.BankName,
	}
	if strings.TrimSpace(r.PaymentMethod) != "" {
		d.PaymentMethod = trade.ParsePaymentMethod(r.PaymentMethod)
	}
	return d, nil
}

// TransactionResponse is a transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	Description     string          `json:"description"`
	Account         string          `json:"account"`
	AccountType     string          `json:"account_type"`
	InstitutionID   string          `json:"institution_id,omitempty"`
	InstitutionName string          `json:"institution_name,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"`
	Reference       string          `json:"reference,omitempty"`
	Category        string          `json:"category"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Status          string          `json:"status,omitempty"`
	ChequeNumber    string          `json:"cheque_number,omitempty"`
	Payee           string          `json:"payee,omitempty"`
	Bank            string          `json:"bank,omitempty"`
	BankName        string          `json:"bank_name,omitempty"`
	SyncedFrom      string          `json:"synced_from,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(t *ledger.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Description:   t.Description,
		Account:       t.Account,
		AccountType:   string(t.AccountType),
		InstitutionID: t.InstitutionID,
		Amount:        t.Amount,
		Date:          t.Date.Format(ledger.DateLayout),
		Reference:     t.Reference,
		Category:      t.Category,
		PaymentMethod: string(t.PaymentMethod),
		Status:        string(t.Status),
		ChequeNumber:  t.ChequeNumber,
		Payee:         t.Payee,
		Bank:          t.Bank,
		BankName:      t.BankName,
		SyncedFrom:    string(t.SyncedFrom),
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if inst, ok := institution.FindByID(t.InstitutionID); ok {
		resp.InstitutionName = inst.Name
	}
	return resp
}

// ToTransactionResponses converts a slice of domain transactions
func ToTransactionResponses(txns []*ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = ToTransactionResponse(t)
	}
	return out
}

// TransactionListFilter carries the list query parameters
type TransactionListFilter struct {
	Search        string `form:"search"`
	Type          string `form:"type" binding:"omitempty,oneof=inflow outflow"`
	Account       string `form:"account"`
	AccountType   string `form:"account_type" binding:"omitempty,oneof=cash bank mobile digital"`
	Category      string `form:"category"`
	SyncedFrom    string `form:"synced_from" binding:"omitempty,oneof=sales purchases expenses"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=cash mpesa bank cheque"`
	Status        string `form:"status" binding:"omitempty,oneof=pending cleared bounced"`
	FromDate      string `form:"from"`
	ToDate        string `form:"to"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy       string `form:"order_by" binding:"omitempty,oneof=date amount account created_at"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomain converts the query into a repository filter
func (f TransactionListFilter) ToDomain() (ledger.TransactionFilter, error) {
	filter := ledger.DefaultTransactionFilter()
	filter.Search = strings.TrimSpace(f.Search)
	filter.Account = strings.TrimSpace(f.Account)
	filter.Category = strings.TrimSpace(f.Category)
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}

	if f.Type != "" {
		t := ledger.TransactionType(f.Type)
		if !t.IsValid() {
			return filter, shared.NewDomainError("INVALID_FILTER", "Unknown transaction type")
		}
		filter.Type = &t
	}
	if f.AccountType != "" {
		t := ledger.AccountType(f.AccountType)
		if !t.IsValid() {
			return filter, shared.NewDomainError("INVALID_FILTER", "Unknown account type")
		}
		filter.AccountType = &t
	}
	if f.SyncedFrom != "" {
		s := ledger.SyncSource(f.SyncedFrom)
		if !s.IsValid() {
			return filter, shared.NewDomainError("INVALID_FILTER", "Unknown sync source")
		}
		filter.SyncedFrom = &s
	}
	if f.PaymentMethod != "" {
		m := trade.ParsePaymentMethod(f.PaymentMethod)
		if !m.IsValid() {
			return filter, shared.NewDomainError("INVALID_FILTER", "Unknown payment method")
		}
		filter.PaymentMethod = &m
	}
	if f.Status != "" {
		s := ledger.ChequeStatus(f.Status)
		if !s.IsValid() {
			return filter, shared.NewDomainError("INVALID_FILTER", "Unknown cheque status")
		}
		filter.Status = &s
	}
	if f.FromDate != "" {
		d, err := ledger.ParseDate(f.FromDate)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_FILTER", "from must be formatted as YYYY-MM-DD")
		}
		filter.FromDate = &d
	}
	if f.ToDate != "" {
		d, err := ledger.ParseDate(f.ToDate)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_FILTER", "to must be formatted as YYYY-MM-DD")
		}
		filter.ToDate = &d
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return filter, shared.NewDomainError("INVALID_FILTER", "to cannot be before from")
	}
	return filter, nil
}

// AccountsResponse is the accounts dashboard payload
type AccountsResponse struct {
	Accounts []AccountBalance `json:"accounts"`
	Total    decimal.Decimal  `json:"total"`
	Currency string           `json:"currency"`
	AsOf     time.Time        `json:"as_of"`
}
