// Package institution holds the static directory of financial institutions
// that ledger accounts can be attached to.
package institution

import "strings"

// Type represents the kind of financial institution
type Type string

const (
	TypeBank          Type = "bank"
	TypeMobileMoney   Type = "mobile_money"
	TypeDigitalWallet Type = "digital_wallet"
)

// IsValid checks if the type is a valid institution Type
func (t Type) IsValid() bool {
	switch t {
	case TypeBank, TypeMobileMoney, TypeDigitalWallet:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the type
func (t Type) DisplayName() string {
	switch t {
	case TypeBank:
		return "Bank"
	case TypeMobileMoney:
		return "Mobile Money"
	case TypeDigitalWallet:
		return "Digital Wallet"
	default:
		return string(t)
	}
}

// Institution is a read-only reference entry describing a bank, a mobile-money
// provider or a digital wallet.
type Institution struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	Type                    Type   `json:"type"`
	Country                 string `json:"country"`
	Icon                    string `json:"icon"`
	Color                   string `json:"color"`
	SupportsCheques         bool   `json:"supports_cheques"`
	SupportsRealTimeBalance bool   `json:"supports_real_time_balance"`
}

// IsBank returns true for cheque-issuing banks and other bank institutions
func (i Institution) IsBank() bool {
	return i.Type == TypeBank
}

// InCountry reports whether the institution operates in the given country.
// Matching ignores case and surrounding whitespace.
func (i Institution) InCountry(country string) bool {
	return strings.EqualFold(strings.TrimSpace(country), i.Country)
}
