package currency

const (
	USD = "USD"
	EUR = "EUR"
	JPY = "JPY"
	GBP = "GBP"
	AUD = "AUD"
	CAD = "CAD"
	CNY = "CNY"
	KRW = "KRW"
	INR = "INR"
	MXN = "MXN"
)

// Currencies lists the common codes, most used first. Any well-formed
// ISO 4217 code passes IsValid; this list only feeds the help text of
// the currency command.
var Currencies = []string{USD, EUR, JPY, GBP, AUD, CAD, CNY, KRW, INR, MXN}

func IsValid(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
