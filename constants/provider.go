package constants

// Provider identifies a payment provider handled by the verifier.
type Provider string

const (
	Telebirr Provider = "telebirr"
	BOA      Provider = "boa"
	CBE      Provider = "cbe"
)

var allProviders = []Provider{Telebirr, BOA, CBE}

// AllProviders returns the supported providers in a stable order.
func AllProviders() []Provider {
	out := make([]Provider, len(allProviders))
	copy(out, allProviders)
	return out
}

// ParseProvider maps user input (case-insensitive) to a Provider.
func ParseProvider(s string) (Provider, bool) {
	for _, p := range allProviders {
		if equalFold(string(p), s) {
			return p, true
		}
	}
	return "", false
}

// Bank names reported on the sender side when the receipt carries no individual sender.
const (
	BOABankName = "Bank of Abyssinia"
	CBEBankName = "Commercial Bank of Ethiopia"
)

// Structural lookup-key requirements, checked before any network call.
const (
	BOAAccountSuffixLen = 5
	CBEAccountSuffixLen = 8
)
