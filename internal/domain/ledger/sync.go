package ledger

import (
	"fmt"
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// Reference prefixes linking synced transactions to their source records
const (
	SaleReferencePrefix     = "SALE-"
	PurchaseReferencePrefix = "PURCHASE-"
)

// SaleReference returns the dedup key for a sale
func SaleReference(saleID string) string {
	return SaleReferencePrefix + saleID
}

// PurchaseReference returns the dedup key for a purchase or expense
func PurchaseReference(purchaseID string) string {
	return PurchaseReferencePrefix + purchaseID
}

// NewSaleTransaction derives the inflow booked for a paid sale
func NewSaleTransaction(s trade.Sale) (*Transaction, error) {
	description := "Sale " + s.ID
	if name := s.CustomerName(); name != "" {
		description = fmt.Sprintf("Sale to %s", name)
	}

	return newSyncedTransaction(syncedParams{
		bucket:      BucketForMethod(s.Method),
		txType:      TransactionTypeInflow,
		amount:      s.AmountOrZero(),
		date:        s.Date,
		reference:   SaleReference(s.ID),
		source:      SyncSourceSales,
		category:    CategorySales,
		description: description,
		method:      s.Method,
	})
}

// NewPurchaseTransaction derives the outflow booked for a paid purchase or
// expense. Operating expenses are tagged separately from inventory purchases.
func NewPurchaseTransaction(p trade.Purchase) (*Transaction, error) {
	party := p.PartyName()
	params := syncedParams{
		bucket:    BucketForMethod(p.PaymentMethod),
		txType:    TransactionTypeOutflow,
		amount:    p.AmountOrZero(),
		date:      p.Date,
		reference: PurchaseReference(p.ID),
		method:    p.PaymentMethod,
		payee:     party,
	}

	if p.IsExpense() {
		params.source = SyncSourceExpenses
		params.category = CategoryExpenses
		label := p.Category
		if label == "" {
			label = "General"
		}
		params.description = "Expense: " + label
		if party != "" {
			params.description += " - " + party
		}
	} else {
		params.source = SyncSourcePurchases
		params.category = CategoryPurchases
		params.description = "Purchase " + p.ID
		if party != "" {
			params.description = "Purchase from " + party
		}
	}

	return newSyncedTransaction(params)
}

type syncedParams struct {
	bucket      AccountBucket
	txType      TransactionType
	amount      decimal.Decimal
	date        time.Time
	reference   string
	source      SyncSource
	category    string
	description string
	method      PaymentMethod
	payee       string
}

func newSyncedTransaction(p syncedParams) (*Transaction, error) {
	if p.amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Source record %s has a negative amount", p.reference))
	}

	date := p.date
	if date.IsZero() {
		date = time.Now()
	}

	txn := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              p.txType,
		Description:       p.description,
		Account:           p.bucket.AccountName(),
		AccountType:       p.bucket.AccountType(),
		InstitutionID:     p.bucket.InstitutionID(),
		Amount:            p.amount,
		Date:              CalendarDate(date),
		Reference:         p.reference,
		Category:          p.category,
		Payee:             p.payee,
		SyncedFrom:        p.source,
	}
	if p.method.IsValid() {
		txn.PaymentMethod = p.method
	}

	txn.AddDomainEvent(NewTransactionRecordedEvent(txn))

	return txn, nil
}

// ReferenceIndex is the set of dedup keys already present in the ledger
type ReferenceIndex map[string]struct{}

// NewReferenceIndex indexes the references of the given transactions
func NewReferenceIndex(txns []*Transaction) ReferenceIndex {
	idx := make(ReferenceIndex, len(txns))
	for _, t := range txns {
		if t.HasReference() {
			idx[t.Reference] = struct{}{}
		}
	}
	return idx
}

// Contains reports whether ref is already in the ledger
func (idx ReferenceIndex) Contains(ref string) bool {
	_, ok := idx[ref]
	return ok
}

// Add records ref as present
func (idx ReferenceIndex) Add(ref string) {
	idx[ref] = struct{}{}
}
