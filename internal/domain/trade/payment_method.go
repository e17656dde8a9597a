package trade

import "strings"

// PaymentMethod is the channel through which a sale or purchase was settled
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodMPesa  PaymentMethod = "mpesa"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCheque PaymentMethod = "cheque"
)

// IsValid checks if the method is one of the known payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMPesa, PaymentMethodBank, PaymentMethodCheque:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// DisplayName returns a human-readable name for the method
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentMethodCash:
		return "Cash"
	case PaymentMethodMPesa:
		return "M-Pesa"
	case PaymentMethodBank:
		return "Bank Transfer"
	case PaymentMethodCheque:
		return "Cheque"
	default:
		return string(m)
	}
}

// ParsePaymentMethod normalizes free-form input ("M-Pesa", " Cheque ") to a
// PaymentMethod. Unknown values are returned lowercased and will fail IsValid.
func ParsePaymentMethod(s string) PaymentMethod {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "m-pesa" {
		return PaymentMethodMPesa
	}
	return PaymentMethod(v)
}
