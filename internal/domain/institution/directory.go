package institution

// Well-known identifiers referenced by the ledger
const (
	MPesaID = "mpesa"
)

var directory = []Institution{
	// Banks
	{ID: "kcb", Name: "KCB Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#00A651", SupportsCheques: true},
	{ID: "equity", Name: "Equity Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#A32A29", SupportsCheques: true},
	{ID: "coop", Name: "Co-operative Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#00843D", SupportsCheques: true},
	{ID: "absa", Name: "Absa Bank Kenya", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#DC0032", SupportsCheques: true},
	{ID: "stanchart", Name: "Standard Chartered", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#0072AA", SupportsCheques: true},
	{ID: "ncba", Name: "NCBA Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#1B1464", SupportsCheques: true},
	{ID: "dtb", Name: "Diamond Trust Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#F7941D", SupportsCheques: true},
	{ID: "family", Name: "Family Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#4B2E83", SupportsCheques: true},
	{ID: "stanbic", Name: "Stanbic Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#0033A1", SupportsCheques: true},
	{ID: "im", Name: "I&M Bank", Type: TypeBank, Country: "Kenya", Icon: "bank", Color: "#E31837", SupportsCheques: true},
	{ID: "crdb", Name: "CRDB Bank", Type: TypeBank, Country: "Tanzania", Icon: "bank", Color: "#00A859", SupportsCheques: true},
	{ID: "stanbic-ug", Name: "Stanbic Bank Uganda", Type: TypeBank, Country: "Uganda", Icon: "bank", Color: "#0033A1", SupportsCheques: true},

	// Mobile money
	{ID: MPesaID, Name: "M-Pesa", Type: TypeMobileMoney, Country: "Kenya", Icon: "smartphone", Color: "#4CAF50", SupportsRealTimeBalance: true},
	{ID: "airtel-money", Name: "Airtel Money", Type: TypeMobileMoney, Country: "Kenya", Icon: "smartphone", Color: "#ED1C24", SupportsRealTimeBalance: true},
	{ID: "tkash", Name: "T-Kash", Type: TypeMobileMoney, Country: "Kenya", Icon: "smartphone", Color: "#0066B3"},
	{ID: "mtn-momo", Name: "MTN MoMo", Type: TypeMobileMoney, Country: "Uganda", Icon: "smartphone", Color: "#FFCB05", SupportsRealTimeBalance: true},
	{ID: "tigo-pesa", Name: "Tigo Pesa", Type: TypeMobileMoney, Country: "Tanzania", Icon: "smartphone", Color: "#00377B"},

	// Digital wallets
	{ID: "paypal", Name: "PayPal", Type: TypeDigitalWallet, Country: "International", Icon: "wallet", Color: "#003087", SupportsRealTimeBalance: true},
	{ID: "wise", Name: "Wise", Type: TypeDigitalWallet, Country: "International", Icon: "wallet", Color: "#9FE870", SupportsRealTimeBalance: true},
	{ID: "payoneer", Name: "Payoneer", Type: TypeDigitalWallet, Country: "International", Icon: "wallet", Color: "#FF4800"},
	{ID: "chipper", Name: "Chipper Cash", Type: TypeDigitalWallet, Country: "Kenya", Icon: "wallet", Color: "#6C2BD9"},
}

var byID = func() map[string]Institution {
	m := make(map[string]Institution, len(directory))
	for _, inst := range directory {
		m[inst.ID] = inst
	}
	return m
}()

// ListAll returns every institution in directory order.
// The returned slice is a copy and may be modified by the caller.
func ListAll() []Institution {
	out := make([]Institution, len(directory))
	copy(out, directory)
	return out
}

// ListByType returns the institutions of the given type
func ListByType(t Type) []Institution {
	out := make([]Institution, 0)
	for _, inst := range directory {
		if inst.Type == t {
			out = append(out, inst)
		}
	}
	return out
}

// ListByCountry returns the institutions operating in the given country
func ListByCountry(country string) []Institution {
	out := make([]Institution, 0)
	for _, inst := range directory {
		if inst.InCountry(country) {
			out = append(out, inst)
		}
	}
	return out
}

// FindByID looks up an institution by identifier
func FindByID(id string) (Institution, bool) {
	inst, ok := byID[id]
	return inst, ok
}

// Exists reports whether id names a known institution
func Exists(id string) bool {
	_, ok := byID[id]
	return ok
}
