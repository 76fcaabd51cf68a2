package extract

import (
	"io"
	"strings"

	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/normalize"
)

// Telebirr receipt labels. Each is rendered as "<amharic>/<english>".
var (
	TelebirrReadyLabel   = Bilingual("የቴሌብር ክፍያ መረጃ", "telebirr Transaction information")
	telebirrPayerName    = Bilingual("የከፋይ ስም", "Payer Name")
	telebirrPayerType    = Bilingual("የከፋይ አካውንት አይነት", "Payer account type")
	telebirrOrgName      = Bilingual("የድርጅቱ ስም", "Organization name")
	telebirrPayerBankRef = Bilingual("የከፋይ ባንክ አካውንት", "Payer bank account reference")
	telebirrCredited     = Bilingual("የገንዘብ ተቀባይ ስም", "Credited Party name")
	telebirrBankAccount  = Bilingual("የባንክ አካውንት ቁጥር", "Bank account number")
	telebirrStatus       = Bilingual("የክፍያው ሁኔታ", "transaction status")
	telebirrInvoice      = Bilingual("የክፍያ ዝርዝር", "Invoice details")
	telebirrAmountInWord = Bilingual("የገንዘቡ ልክ በፊደል", "Total Amount in word")
	telebirrTotalPaid    = Bilingual("ጠቅላላ የተከፈለ", "Total Paid Amount")
)

const (
	organizationType = "organization"
	// invoice rows are matched on their leading cells only
	invoiceLeadCells = 3
)

// Telebirr extracts the compound wallet receipt page.
func Telebirr(html io.Reader, transactionID string) (Fields, error) {
	r, err := NewResolver(html)
	if err != nil {
		return Fields{}, err
	}
	return telebirrFields(r, transactionID), nil
}

func telebirrFields(r *Resolver, transactionID string) Fields {
	var f Fields
	f.Status = nonEmpty(r.Value(telebirrStatus))
	f.Sender = telebirrSender(r)
	f.Receiver = telebirrReceiver(r)

	var settled *string
	if inv := r.Table(telebirrInvoice); inv != nil {
		cells := inv.RowContaining(transactionID, invoiceLeadCells)
		if len(cells) >= 3 {
			f.TransactionID = entity.StringPtr(strings.TrimSpace(transactionID))
			date := normalize.Date(cells[1])
			f.Date = entity.StringPtr(date)
			settled = nonEmpty(&cells[2])
		}
	}

	var total *string
	if summary := r.Table(telebirrAmountInWord); summary != nil {
		total = nonEmpty(summary.Value(telebirrTotalPaid))
	}
	switch {
	case total != nil:
		f.Amount = amountPtr(*total)
	case settled != nil:
		f.Amount = amountPtr(*settled)
	}
	return f
}

func telebirrSender(r *Resolver) entity.Party {
	payer := entity.Deref(nonEmpty(r.Value(telebirrPayerName)))
	accountType := entity.Deref(r.Value(telebirrPayerType))
	if !strings.EqualFold(strings.TrimSpace(accountType), organizationType) {
		return entity.Individual(payer)
	}
	org := entity.Deref(nonEmpty(r.Value(telebirrOrgName)))
	if org == "" {
		org = payer
	}
	return entity.Organization(org, holderFromReference(entity.Deref(r.Value(telebirrPayerBankRef))))
}

func telebirrReceiver(r *Resolver) entity.Party {
	credited := entity.Deref(nonEmpty(r.Value(telebirrCredited)))
	if !r.Has(telebirrBankAccount) {
		return entity.Individual(credited)
	}
	// bank transfers report the account holder, not the wallet recipient
	holder := holderFromReference(entity.Deref(r.Value(telebirrBankAccount)))
	if holder == "" {
		holder = credited
	}
	return entity.Organization(holder, holder)
}

// holderFromReference keeps the name of a "<code> <full name>" value.
func holderFromReference(v string) string {
	v = strings.TrimSpace(v)
	_, name, ok := strings.Cut(v, " ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}

func nonEmpty(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func amountPtr(raw string) *float64 {
	v := normalize.Amount(raw)
	return &v
}
