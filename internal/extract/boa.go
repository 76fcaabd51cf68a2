package extract

import (
	"io"

	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/normalize"
)

// BOASlipTable is the selector of the slip's only label/value table.
const BOASlipTable = "table.my-5"

var (
	boaSender    = Exact("Source Account Name")
	boaReceiver  = Exact("Receiver's Name")
	boaAmount    = Exact("Transferred amount")
	boaDate      = Exact("Transaction Date")
	boaReference = Exact("Transaction Reference")
)

// BOA extracts the bank slip. found reports whether the slip table was present.
func BOA(html io.Reader) (f Fields, found bool, err error) {
	r, err := NewResolver(html)
	if err != nil {
		return Fields{}, false, err
	}
	table := r.Root().Find(BOASlipTable).First()
	if table.Length() == 0 {
		return Fields{}, false, nil
	}
	t := Within(table)

	f.TransactionID = nonEmpty(t.Value(boaReference))
	f.Sender = entity.Individual(entity.Deref(nonEmpty(t.Value(boaSender))))
	f.Receiver = entity.Individual(entity.Deref(nonEmpty(t.Value(boaReceiver))))
	if v := nonEmpty(t.Value(boaAmount)); v != nil {
		f.Amount = amountPtr(*v)
	}
	f.Date = normalize.DatePtr(nonEmpty(t.Value(boaDate)))
	return f, true, nil
}
