package entity

// VerificationResult is the uniform response shape of every provider.
type VerificationResult struct {
	TransactionID string               `json:"transaction_id"`
	Status        string               `json:"status"`
	Message       string               `json:"message"`
	VerifiedData  *VerifiedDataDetails `json:"verified_data"`
	DebugInfo     *string              `json:"debug_info"`
}

// VerifiedDataDetails holds the fields extracted from a receipt.
// Optional fields serialize as explicit nulls.
type VerifiedDataDetails struct {
	SenderName       *string `json:"sender_name"`
	SenderBankName   *string `json:"sender_bank_name"`
	ReceiverName     *string `json:"receiver_name"`
	ReceiverBankName *string `json:"receiver_bank_name"`
	Status           *string `json:"status"`
	Date             *string `json:"date"`
	Amount           float64 `json:"amount"`
}

// SetSender writes the sender side from a Party, clearing the other representation.
func (d *VerifiedDataDetails) SetSender(p Party) {
	d.SenderName, d.SenderBankName = p.Split()
}

// SetReceiver writes the receiver side from a Party, clearing the other representation.
func (d *VerifiedDataDetails) SetReceiver(p Party) {
	d.ReceiverName, d.ReceiverBankName = p.Split()
}

// VerifyRequest is the provider-agnostic verification input.
type VerifyRequest struct {
	TransactionID string
	// Account is the sender account (BOA) or account number (CBE); ignored by Telebirr.
	Account string
}

// Identifier is what identifier discovery recovered from an uploaded image.
type Identifier struct {
	TransactionID   *string `json:"transaction_id"`
	AccountFragment *string `json:"account_fragment"`
}

// Found reports whether a transaction id was discovered.
func (i Identifier) Found() bool {
	return i.TransactionID != nil && *i.TransactionID != ""
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
