package fallback

// Severity levels reported in detailed results
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Severity grades an error type
func Severity(t ErrorType) string {
	switch t {
	case TypeWallet:
		return SeverityLow
	case TypeNetwork, TypeGas, TypeTransaction:
		return SeverityMedium
	case TypeContract:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// Retryable reports whether repeating the operation may succeed without
// changing its inputs
func Retryable(t ErrorType) bool {
	switch t {
	case TypeNetwork, TypeGas, TypeTransaction, TypeWallet:
		return true
	default:
		return false
	}
}
