package ledger

import (
	"strings"

	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/domain/trade"
)

// AccountBucket is one of the channels balances are aggregated across
type AccountBucket int

const (
	BucketCash AccountBucket = iota
	BucketMPesa
	BucketBank
)

// Canonical account names for each bucket
const (
	AccountCash  = "Cash"
	AccountMPesa = "M-Pesa"
	AccountBank  = "Bank"
)

// Buckets lists every bucket in display order
var Buckets = []AccountBucket{BucketCash, BucketMPesa, BucketBank}

// String returns the bucket's canonical account name
func (b AccountBucket) String() string {
	return b.AccountName()
}

// AccountName returns the display name transactions in this bucket are booked against
func (b AccountBucket) AccountName() string {
	switch b {
	case BucketMPesa:
		return AccountMPesa
	case BucketBank:
		return AccountBank
	default:
		return AccountCash
	}
}

// AccountType returns the account type for the bucket
func (b AccountBucket) AccountType() AccountType {
	switch b {
	case BucketMPesa:
		return AccountTypeMobile
	case BucketBank:
		return AccountTypeBank
	default:
		return AccountTypeCash
	}
}

// InstitutionID returns the institution transactions in this bucket are
// attached to, or "" when there is none.
func (b AccountBucket) InstitutionID() string {
	if b == BucketMPesa {
		return institution.MPesaID
	}
	return ""
}

// BucketForMethod maps every payment method to a bucket. Cheques settle
// through the bank and anything unrecognised is treated as cash.
func BucketForMethod(m trade.PaymentMethod) AccountBucket {
	switch m {
	case trade.PaymentMethodMPesa:
		return BucketMPesa
	case trade.PaymentMethodBank, trade.PaymentMethodCheque:
		return BucketBank
	default:
		return BucketCash
	}
}

// BucketResolver maps ledger account names back to buckets
type BucketResolver struct {
	bankAccounts map[string]struct{}
}

// NewBucketResolver creates a resolver. bankAccounts lists additional account
// names, such as "KCB", that belong to the Bank bucket without containing
// the word "Bank".
func NewBucketResolver(bankAccounts ...string) *BucketResolver {
	r := &BucketResolver{bankAccounts: make(map[string]struct{}, len(bankAccounts))}
	for _, name := range bankAccounts {
		name = strings.TrimSpace(name)
		if name != "" {
			r.bankAccounts[name] = struct{}{}
		}
	}
	return r
}

// Resolve returns the bucket for an account name. The second result is false
// when the name belongs to no bucket.
func (r *BucketResolver) Resolve(accountName string) (AccountBucket, bool) {
	switch {
	case accountName == AccountCash:
		return BucketCash, true
	case accountName == AccountMPesa:
		return BucketMPesa, true
	case strings.Contains(accountName, AccountBank):
		return BucketBank, true
	}
	if r != nil {
		if _, ok := r.bankAccounts[accountName]; ok {
			return BucketBank, true
		}
	}
	return BucketCash, false
}
