package constants

import "strings"

// Status is the envelope status reported to clients.
type Status string

// Stable values (clients match on these exact strings).
const (
	StatusCompleted            Status = "Completed"
	StatusPartial              Status = "Partial Data Extracted"
	StatusFailed               Status = "Failed"
	StatusInvalidTransactionID Status = "Invalid Transaction ID"
	StatusTimeout              Status = "Network/Load Timeout"
	StatusBrowserError         Status = "Browser Error"
	StatusInvalidInput         Status = "Invalid Input"
	StatusAccountRequired      Status = "Account_Number_Required"
	StatusTransactionIDMissing Status = "Transaction_ID_Not_Found"
	StatusInvalidImage         Status = "Invalid_Image"

	// CBE document statuses
	StatusPDFFetchFailed   Status = "PDF_FETCH_FAILED"
	StatusPDFInvalidFormat Status = "INVALID_INPUT_OR_PDF_FORMAT"
	StatusPDFParseFailed   Status = "PDF_PARSE_FAILED"
)

func (s Status) String() string { return string(s) }

// IsCompletedText reports whether a provider's own status wording means completion.
func IsCompletedText(s string) bool {
	return strings.Contains(strings.ToLower(s), "completed")
}
