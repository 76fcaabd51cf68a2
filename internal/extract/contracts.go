// Package extract locates labeled receipt fields in rendered pages and OCR text.
package extract

import (
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
)

// Fields is the raw field map produced by an extractor. Nil/unknown values mean
// the field was not found; that is a partial extraction, not an error.
type Fields struct {
	TransactionID *string
	Sender        entity.Party
	Receiver      entity.Party
	Status        *string
	Date          *string
	Amount        *float64
}

// Any reports whether at least one field other than Status was recovered.
func (f Fields) Any() bool {
	return f.TransactionID != nil || f.Sender.Known() || f.Receiver.Known() ||
		f.Date != nil || f.Amount != nil
}

// Merge fills the empty fields of f from next; fields already set are kept.
func (f Fields) Merge(next Fields) Fields {
	if f.TransactionID == nil {
		f.TransactionID = next.TransactionID
	}
	if !f.Sender.Known() {
		f.Sender = next.Sender
	}
	if !f.Receiver.Known() {
		f.Receiver = next.Receiver
	}
	if f.Status == nil {
		f.Status = next.Status
	}
	if f.Date == nil {
		f.Date = next.Date
	}
	if f.Amount == nil {
		f.Amount = next.Amount
	}
	return f
}

// MergePages folds page results left to right keeping the first non-nil value per field.
func MergePages(pages []Fields) Fields {
	var out Fields
	for _, p := range pages {
		out = out.Merge(p)
	}
	return out
}
