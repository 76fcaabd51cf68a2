package providers

import (
	"fmt"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
)

// profile is a provider's message catalog and classification settings.
type profile struct {
	provider     constants.Provider
	parseFailure constants.Status
	// senderBank fills an otherwise unknown sender side.
	senderBank string

	success        string // %s = provider status
	providerStatus string // %s = provider status
	partial        string
	// failures holds the message of every status in the failure set.
	failures map[constants.Status]string
}

func (p *profile) isFailure(status string) bool {
	_, ok := p.failures[constants.Status(status)]
	return ok
}

func (p *profile) message(status string, o Outcome) string {
	if msg, ok := p.failures[constants.Status(status)]; ok {
		return msg
	}
	raw := ""
	if o.Fields != nil {
		raw = entity.Deref(o.Fields.Status)
	}
	switch status {
	case constants.StatusCompleted.String():
		if raw == "" {
			raw = status
		}
		return fmt.Sprintf(p.success, raw)
	case constants.StatusPartial.String():
		return p.partial
	default:
		return fmt.Sprintf(p.providerStatus, status)
	}
}

func (p *profile) assemble(o Outcome) entity.VerificationResult {
	status := Classify(o, p.parseFailure)
	res := entity.VerificationResult{
		TransactionID: o.TransactionID,
		Status:        status,
		Message:       p.message(status, o),
	}

	if f := o.Fields; f != nil {
		if f.TransactionID != nil {
			res.TransactionID = *f.TransactionID
		}
		d := &entity.VerifiedDataDetails{
			Status: f.Status,
			Date:   f.Date,
		}
		sender := f.Sender
		if !sender.Known() && p.senderBank != "" {
			sender = entity.Organization(p.senderBank, "")
		}
		d.SetSender(sender)
		d.SetReceiver(f.Receiver)
		if f.Amount != nil {
			d.Amount = *f.Amount
		}
		res.VerifiedData = d
	}

	if p.isFailure(status) {
		debug := status
		if o.Cause != nil {
			debug = o.Cause.Error()
		}
		res.DebugInfo = &debug
	}
	return res
}

// AccountRequired is the soft failure returned when an image upload lacks a usable account number.
func AccountRequired(provider constants.Provider, transactionID string) entity.VerificationResult {
	var label string
	switch provider {
	case constants.BOA:
		label = "sender account number (at least 5 characters)"
	default:
		label = "account number (at least 8 digits)"
	}
	return entity.VerificationResult{
		TransactionID: transactionID,
		Status:        constants.StatusAccountRequired.String(),
		Message:       fmt.Sprintf("Transaction ID %s was found in the image. Please provide the %s to complete verification.", transactionID, label),
		VerifiedData:  &entity.VerifiedDataDetails{},
	}
}

// IdentifierNotFound is the 400 body returned when no identifier could be discovered.
func IdentifierNotFound() entity.VerificationResult {
	debug := "no transaction id in QR code or OCR answer"
	return entity.VerificationResult{
		TransactionID: "",
		Status:        constants.StatusTransactionIDMissing.String(),
		Message:       "Could not find a transaction ID in the uploaded image. Please enter it manually.",
		DebugInfo:     &debug,
	}
}
