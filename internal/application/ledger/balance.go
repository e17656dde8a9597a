package ledger

import (
	"sort"

	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// AccountBalance is the computed balance of one named account
type AccountBalance struct {
	Account       string                   `json:"account"`
	AccountType   ledger.AccountType       `json:"account_type"`
	InstitutionID string                   `json:"institution_id,omitempty"`
	Institution   *institution.Institution `json:"institution,omitempty"`
	Balance       decimal.Decimal          `json:"balance"`
	Transactions  int                      `json:"transactions"`
}

// BalanceCalculator computes per-account balances from the ledger plus paid
// sales and purchases.
type BalanceCalculator struct {
	resolver *ledger.BucketResolver
}

// NewBalanceCalculator creates a calculator. A nil resolver only recognises
// the canonical account names.
func NewBalanceCalculator(resolver *ledger.BucketResolver) *BalanceCalculator {
	if resolver == nil {
		resolver = ledger.NewBucketResolver()
	}
	return &BalanceCalculator{resolver: resolver}
}

// ComputeBalance returns the signed sum of ledger transactions on accountName,
// plus paid sales and minus paid purchases whose payment method falls in the
// account's bucket. Unrecognised accounts get the ledger sum only.
func (c *BalanceCalculator) ComputeBalance(
	accountName string,
	txns []*ledger.Transaction,
	sales []trade.Sale,
	purchases []trade.Purchase,
) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		if t.Account == accountName {
			balance = balance.Add(t.SignedAmount())
		}
	}

	bucket, ok := c.resolver.Resolve(accountName)
	if !ok {
		return balance
	}

	for _, s := range sales {
		if s.IsPaid() && ledger.BucketForMethod(s.Method) == bucket {
			balance = balance.Add(s.AmountOrZero())
		}
	}
	for _, p := range purchases {
		if p.IsPaid() && ledger.BucketForMethod(p.PaymentMethod) == bucket {
			balance = balance.Sub(p.AmountOrZero())
		}
	}
	return balance
}

// Balances returns a balance for the three canonical accounts followed by
// every other account name seen in the ledger, sorted by name.
func (c *BalanceCalculator) Balances(
	txns []*ledger.Transaction,
	sales []trade.Sale,
	purchases []trade.Purchase,
) []AccountBalance {
	type accountInfo struct {
		accountType   ledger.AccountType
		institutionID string
		count         int
	}

	seen := make(map[string]*accountInfo)
	for _, t := range txns {
		info, ok := seen[t.Account]
		if !ok {
			info = &accountInfo{accountType: t.AccountType, institutionID: t.InstitutionID}
			seen[t.Account] = info
		}
		if info.institutionID == "" {
			info.institutionID = t.InstitutionID
		}
		info.count++
	}

	result := make([]AccountBalance, 0, len(ledger.Buckets)+len(seen))
	for _, b := range ledger.Buckets {
		name := b.AccountName()
		ab := AccountBalance{
			Account:       name,
			AccountType:   b.AccountType(),
			InstitutionID: b.InstitutionID(),
			Balance:       c.ComputeBalance(name, txns, sales, purchases),
		}
		if info, ok := seen[name]; ok {
			ab.Transactions = info.count
			delete(seen, name)
		}
		result = append(result, withInstitution(ab))
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := seen[name]
		result = append(result, withInstitution(AccountBalance{
			Account:       name,
			AccountType:   info.accountType,
			InstitutionID: info.institutionID,
			Balance:       c.ComputeBalance(name, txns, sales, purchases),
			Transactions:  info.count,
		}))
	}
	return result
}

// FindBalance returns the entry for accountName
func FindBalance(balances []AccountBalance, accountName string) (AccountBalance, bool) {
	for _, b := range balances {
		if b.Account == accountName {
			return b, true
		}
	}
	return AccountBalance{}, false
}

func withInstitution(ab AccountBalance) AccountBalance {
	if ab.InstitutionID == "" {
		return ab
	}
	if inst, ok := institution.FindByID(ab.InstitutionID); ok {
		ab.Institution = &inst
	}
	return ab
}
