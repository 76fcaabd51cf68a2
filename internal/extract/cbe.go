package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/payment-verifier/internal/entity"
)

var (
	cbeTransactionID = regexp.MustCompile(`(?i)Transaction ID.*?:?\s*([A-Z0-9]{10,})`)
	cbePayer         = regexp.MustCompile(`(?i)Payer Name.*?:?\s*(.+)`)
	cbeReceiver      = regexp.MustCompile(`(?i)Receiver Name.*?:?\s*(.+)`)
	cbeAmount        = regexp.MustCompile(`(?i)Transferred Amount.*?:?\s*([\d.,]+)\s*(?:ETB|Birr)?`)
	cbeDate          = regexp.MustCompile(`(?i)Payment Date & Time.*?:?\s*(.+)`)
	cbeStatus        = regexp.MustCompile(`(?i)Transaction Status.*?:?\s*(Completed|Failed|Pending|Successful)`)
)

// CBEPage parses the labeled answer the vision model gives for one receipt page.
// Dates are left raw; callers normalize after merging pages.
func CBEPage(text string) Fields {
	var f Fields
	if text = strings.TrimSpace(text); text == "" {
		return f
	}
	if v := firstGroup(cbeTransactionID, text); v != nil {
		up := strings.ToUpper(*v)
		f.TransactionID = &up
	}
	f.Sender = entity.Individual(entity.Deref(firstGroup(cbePayer, text)))
	f.Receiver = entity.Individual(entity.Deref(firstGroup(cbeReceiver, text)))
	if v := firstGroup(cbeAmount, text); v != nil {
		f.Amount = amountPtr(strings.ReplaceAll(*v, ",", ""))
	}
	f.Date = firstGroup(cbeDate, text)
	f.Status = firstGroup(cbeStatus, text)
	return f
}

func firstGroup(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" || IsPlaceholder(v) {
		return nil
	}
	return &v
}

// IsPlaceholder reports whether v is a filler answer such as "Not Found" or "N/A".
// Models answer this way rather than leaving a label out.
func IsPlaceholder(v string) bool {
	switch strings.ToLower(strings.Trim(v, " .*")) {
	case "not found", "n/a", "none", "null", "unknown":
		return true
	}
	return false
}
