package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/browser"
	"github.com/joseph-ayodele/payment-verifier/internal/document"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/extract"
	"github.com/joseph-ayodele/payment-verifier/internal/llm"
	"github.com/joseph-ayodele/payment-verifier/internal/ocr"
)

type fakeRenderer struct {
	page  browser.RenderedPage
	err   error
	calls int
	last  browser.RenderRequest
}

func (f *fakeRenderer) Render(_ context.Context, req browser.RenderRequest) (browser.RenderedPage, error) {
	f.calls++
	f.last = req
	return f.page, f.err
}

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
	url   string
}

func (f *fakeFetcher) FetchPDF(_ context.Context, url string) ([]byte, error) {
	f.calls++
	f.url = url
	return f.body, f.err
}

type fakeRasterizer struct {
	pages []ocr.Page
	err   error
}

func (f fakeRasterizer) Pages(context.Context, []byte) ([]ocr.Page, error) { return f.pages, f.err }

type fakeVision struct {
	answers []string
	errs    []error
	calls   int
}

func (f *fakeVision) Ask(context.Context, llm.VisionRequest) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if i < len(f.answers) {
		return f.answers[i], err
	}
	return "", err
}

var timeouts = PageTimeouts{Navigation: time.Minute, Ready: 30 * time.Second}

func telebirrHTML(status string) string {
	statusRow := ""
	if status != "" {
		statusRow = `<tr><td>የክፍያው ሁኔታ/transaction status</td><td>` + status + `</td></tr>`
	}
	return `<html><body><table>
<tr><td>የቴሌብር ክፍያ መረጃ/telebirr Transaction information</td></tr>
<tr><td>የከፋይ ስም/Payer Name</td><td>Abebe Kebede</td></tr>
<tr><td>የገንዘብ ተቀባይ ስም/Credited Party name</td><td>Almaz Store</td></tr>` + statusRow + `
</table>
<table>
<tr><td class="receipttableTd3">የክፍያ ዝርዝር/ Invoice details</td></tr>
<tr><td class="receipttableTd2">CE12XYZ999</td><td>06-07-2025 10:08:00</td><td>150.00 Birr</td></tr>
</table></body></html>`
}

func TestTelebirr_Statuses(t *testing.T) {
	tests := []struct {
		name        string
		page        browser.RenderedPage
		err         error
		wantStatus  string
		wantMessage string
		wantData    bool
		wantDebug   bool
	}{
		{
			name:        "completed wording",
			page:        browser.RenderedPage{HTML: telebirrHTML("Transaction Completed Successfully")},
			wantStatus:  "Completed",
			wantMessage: "Transaction verification successful. Status: Transaction Completed Successfully.",
			wantData:    true,
		},
		{
			name:        "other provider status",
			page:        browser.RenderedPage{HTML: telebirrHTML("Pending")},
			wantStatus:  "Pending",
			wantMessage: "Transaction verification found, but status is: Pending.",
			wantData:    true,
		},
		{
			name:        "no status",
			page:        browser.RenderedPage{HTML: telebirrHTML("")},
			wantStatus:  "Partial Data Extracted",
			wantMessage: "Transaction page found, but status could not be determined.",
			wantData:    true,
		},
		{
			name:       "empty page",
			page:       browser.RenderedPage{HTML: "<html><body></body></html>"},
			wantStatus: "Failed",
			wantData:   true,
			wantDebug:  true,
		},
		{
			name:       "timeout",
			err:        fmt.Errorf("%w: navigate: context deadline exceeded", browser.ErrTimeout),
			wantStatus: "Network/Load Timeout",
			wantDebug:  true,
		},
		{
			name:       "browser fault",
			err:        fmt.Errorf("%w: navigate: net::ERR_NAME_NOT_RESOLVED", browser.ErrNavigation),
			wantStatus: "Browser Error",
			wantDebug:  true,
		},
		{
			name:       "unknown transaction",
			page:       browser.RenderedPage{Missing: true},
			wantStatus: "Invalid Transaction ID",
			wantDebug:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{page: tt.page, err: tt.err}
			v := NewTelebirrVerifier(r, "https://receipts.example/receipt/", timeouts, nil)

			res := v.Verify(context.Background(), entity.VerifyRequest{TransactionID: " CE12XYZ999 "})
			if res.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", res.Status, tt.wantStatus)
			}
			if tt.wantMessage != "" && res.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", res.Message, tt.wantMessage)
			}
			if (res.VerifiedData != nil) != tt.wantData {
				t.Errorf("verified_data present = %v, want %v", res.VerifiedData != nil, tt.wantData)
			}
			if (res.DebugInfo != nil) != tt.wantDebug {
				t.Errorf("debug_info present = %v, want %v", res.DebugInfo != nil, tt.wantDebug)
			}
			if res.TransactionID != "CE12XYZ999" {
				t.Errorf("transaction id = %q", res.TransactionID)
			}
			if r.last.URL != "https://receipts.example/receipt/CE12XYZ999" {
				t.Errorf("url = %q", r.last.URL)
			}
		})
	}
}

func TestTelebirr_VerifiedData(t *testing.T) {
	r := &fakeRenderer{page: browser.RenderedPage{HTML: telebirrHTML("Completed")}}
	res := NewTelebirrVerifier(r, "https://receipts.example/receipt", timeouts, nil).
		Verify(context.Background(), entity.VerifyRequest{TransactionID: "CE12XYZ999"})

	d := res.VerifiedData
	if d == nil {
		t.Fatal("expected verified data")
	}
	if entity.Deref(d.SenderName) != "Abebe Kebede" || d.SenderBankName != nil {
		t.Errorf("sender = (%v, %v)", entity.Deref(d.SenderName), d.SenderBankName)
	}
	if entity.Deref(d.ReceiverName) != "Almaz Store" || d.ReceiverBankName != nil {
		t.Errorf("receiver = (%v, %v)", entity.Deref(d.ReceiverName), d.ReceiverBankName)
	}
	if entity.Deref(d.Date) != "2025-07-06T10:08:00" || d.Amount != 150 {
		t.Errorf("date/amount = %v / %v", entity.Deref(d.Date), d.Amount)
	}
	if entity.Deref(d.Status) != "Completed" {
		t.Errorf("provider status = %v", entity.Deref(d.Status))
	}
	if r.last.NavTimeout != time.Minute || r.last.ReadyTimeout != 30*time.Second {
		t.Errorf("timeouts = %v / %v", r.last.NavTimeout, r.last.ReadyTimeout)
	}
}

func TestTelebirr_EmptyID(t *testing.T) {
	r := &fakeRenderer{}
	res := NewTelebirrVerifier(r, "https://x/", timeouts, nil).Verify(context.Background(), entity.VerifyRequest{})
	if res.Status != constants.StatusInvalidInput.String() || r.calls != 0 {
		t.Errorf("status = %q, render calls = %d", res.Status, r.calls)
	}
}

const boaHTML = `<html><body><h1 class="text-center">Receipt</h1>
<table class="my-5">
<tr><td>Source Account Name</td><td>ABEBE KEBEDE</td></tr>
<tr><td>Receiver's Name</td><td>ALMAZ TESFAYE</td></tr>
<tr><td>Transferred amount</td><td>1,500.00 ETB</td></tr>
<tr><td>Transaction Date</td><td>06/07/25 10:08</td></tr>
<tr><td>Transaction Reference</td><td>FT25188ABCDE</td></tr>
</table></body></html>`

func TestBOA_Verify(t *testing.T) {
	r := &fakeRenderer{page: browser.RenderedPage{HTML: boaHTML}}
	v := NewBOAVerifier(r, "https://slips.example/slip/", timeouts, nil)

	res := v.Verify(context.Background(), entity.VerifyRequest{TransactionID: "FT25188abcde", Account: "1234567890"})
	if res.Status != "Completed" {
		t.Fatalf("status = %q", res.Status)
	}
	if r.last.URL != "https://slips.example/slip/?trx=FT25188abcde67890" {
		t.Errorf("url = %q", r.last.URL)
	}
	if res.TransactionID != "FT25188ABCDE" {
		t.Errorf("transaction id = %q, want slip reference", res.TransactionID)
	}
	d := res.VerifiedData
	if entity.Deref(d.SenderName) != "ABEBE KEBEDE" || d.SenderBankName != nil {
		t.Errorf("sender = (%v, %v)", entity.Deref(d.SenderName), entity.Deref(d.SenderBankName))
	}
	if d.Amount != 1500 || entity.Deref(d.Date) != "2025-07-06T10:08:00" {
		t.Errorf("amount/date = %v / %v", d.Amount, entity.Deref(d.Date))
	}
	if res.DebugInfo != nil {
		t.Errorf("debug_info = %q, want nil", *res.DebugInfo)
	}
}

func TestBOA_ShortAccount(t *testing.T) {
	r := &fakeRenderer{}
	res := NewBOAVerifier(r, "https://slips.example/slip/", timeouts, nil).
		Verify(context.Background(), entity.VerifyRequest{TransactionID: "FT1", Account: "1234"})
	if res.Status != "Invalid Input" {
		t.Errorf("status = %q", res.Status)
	}
	if r.calls != 0 {
		t.Error("renderer must not be called when the account is too short")
	}
	if res.DebugInfo == nil {
		t.Error("expected debug_info")
	}
}

func TestBOA_MissingTable(t *testing.T) {
	r := &fakeRenderer{page: browser.RenderedPage{HTML: "<html><body><h1>Receipt</h1></body></html>"}}
	res := NewBOAVerifier(r, "https://slips.example/slip/", timeouts, nil).
		Verify(context.Background(), entity.VerifyRequest{TransactionID: "FT1", Account: "12345"})
	if res.Status != "Failed" {
		t.Fatalf("status = %q", res.Status)
	}
	d := res.VerifiedData
	if d == nil || entity.Deref(d.SenderBankName) != constants.BOABankName || d.SenderName != nil {
		t.Errorf("verified data = %+v", d)
	}
}

const cbePage1 = `Transaction ID: FT25188TN19J
Payer Name: EHITEMUSIE NEBIYU MENGISTIE
Transferred Amount: 100.00 ETB
Payment Date & Time: 06/07/2025, 10:08:00 AM`

const cbePage2 = `Payer Name: SOMEONE ELSE
Receiver Name: ABDULSHEKUR SULTAN AHIMED
Transaction Status: Completed`

func newCBE(f *fakeFetcher, r fakeRasterizer, v *fakeVision) *CBEVerifier {
	return NewCBEVerifier(f, r, v, "https://apps.cbe.example:100/", nil)
}

func twoPages() []ocr.Page {
	return []ocr.Page{{Number: 1, PNG: []byte("1")}, {Number: 2, PNG: []byte("2")}}
}

func TestCBE_MergesPages(t *testing.T) {
	f := &fakeFetcher{body: []byte("%PDF")}
	vision := &fakeVision{answers: []string{cbePage1, cbePage2}}
	res := newCBE(f, fakeRasterizer{pages: twoPages()}, vision).
		Verify(context.Background(), entity.VerifyRequest{TransactionID: "FT25188TN19J", Account: "1000123412345678"})

	if f.url != "https://apps.cbe.example:100/?id=FT25188TN19J12345678" {
		t.Errorf("url = %q", f.url)
	}
	if res.Status != "Completed" {
		t.Fatalf("status = %q", res.Status)
	}
	d := res.VerifiedData
	if entity.Deref(d.SenderName) != "EHITEMUSIE NEBIYU MENGISTIE" {
		t.Errorf("sender = %q, want first page value", entity.Deref(d.SenderName))
	}
	if d.SenderBankName != nil {
		t.Errorf("sender bank = %q, want nil when a name was found", *d.SenderBankName)
	}
	if entity.Deref(d.ReceiverName) != "ABDULSHEKUR SULTAN AHIMED" {
		t.Errorf("receiver = %q", entity.Deref(d.ReceiverName))
	}
	if entity.Deref(d.Date) != "2025-06-07T10:08:00" {
		t.Errorf("date = %q", entity.Deref(d.Date))
	}
	if d.Amount != 100 {
		t.Errorf("amount = %v", d.Amount)
	}
	if vision.calls != 2 {
		t.Errorf("vision calls = %d, want one per page", vision.calls)
	}
}

func TestCBE_Failures(t *testing.T) {
	tests := []struct {
		name        string
		account     string
		fetcher     *fakeFetcher
		rasterizer  fakeRasterizer
		vision      *fakeVision
		wantStatus  string
		wantDebug   string
		wantFetches int
	}{
		{
			name:       "short account",
			account:    "1234567",
			fetcher:    &fakeFetcher{},
			wantStatus: "INVALID_INPUT_OR_PDF_FORMAT",
			wantDebug:  "at least 8 digits",
		},
		{
			name:        "http status",
			account:     "12345678",
			fetcher:     &fakeFetcher{err: &document.StatusError{Code: 404, Body: "Not Found"}},
			wantStatus:  "PDF_FETCH_FAILED",
			wantDebug:   "HTTP error fetching PDF: 404 - Not Found",
			wantFetches: 1,
		},
		{
			name:        "transport",
			account:     "12345678",
			fetcher:     &fakeFetcher{err: fmt.Errorf("%w: dial tcp: refused", document.ErrTransport)},
			wantStatus:  "PDF_FETCH_FAILED",
			wantDebug:   "refused",
			wantFetches: 1,
		},
		{
			name:        "html instead of pdf",
			account:     "12345678",
			fetcher:     &fakeFetcher{err: fmt.Errorf("%w: text/html", document.ErrContentType)},
			wantStatus:  "INVALID_INPUT_OR_PDF_FORMAT",
			wantDebug:   "text/html",
			wantFetches: 1,
		},
		{
			name:        "oversized pdf",
			account:     "12345678",
			fetcher:     &fakeFetcher{err: fmt.Errorf("%w: PDF exceeds 33554432 bytes", document.ErrTooLarge)},
			wantStatus:  "INVALID_INPUT_OR_PDF_FORMAT",
			wantDebug:   "exceeds",
			wantFetches: 1,
		},
		{
			name:        "unreadable pdf",
			account:     "12345678",
			fetcher:     &fakeFetcher{body: []byte("junk")},
			rasterizer:  fakeRasterizer{err: fmt.Errorf("%w: bad header", ocr.ErrNotPDF)},
			wantStatus:  "INVALID_INPUT_OR_PDF_FORMAT",
			wantFetches: 1,
		},
		{
			name:        "rasterizer crash",
			account:     "12345678",
			fetcher:     &fakeFetcher{body: []byte("%PDF")},
			rasterizer:  fakeRasterizer{err: errors.New("pdftoppm: signal killed")},
			wantStatus:  "PDF_PARSE_FAILED",
			wantDebug:   "signal killed",
			wantFetches: 1,
		},
		{
			name:        "nothing extracted",
			account:     "12345678",
			fetcher:     &fakeFetcher{body: []byte("%PDF")},
			rasterizer:  fakeRasterizer{pages: twoPages()},
			vision:      &fakeVision{errs: []error{llm.ErrNoAPIKey}},
			wantStatus:  "PDF_PARSE_FAILED",
			wantDebug:   "no data extracted",
			wantFetches: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vision := tt.vision
			if vision == nil {
				vision = &fakeVision{}
			}
			res := newCBE(tt.fetcher, tt.rasterizer, vision).
				Verify(context.Background(), entity.VerifyRequest{TransactionID: "FT25188TN19J", Account: tt.account})
			if res.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", res.Status, tt.wantStatus)
			}
			if res.DebugInfo == nil || !strings.Contains(*res.DebugInfo, tt.wantDebug) {
				t.Errorf("debug_info = %v, want it to contain %q", res.DebugInfo, tt.wantDebug)
			}
			if tt.fetcher.calls != tt.wantFetches {
				t.Errorf("fetch calls = %d, want %d", tt.fetcher.calls, tt.wantFetches)
			}
		})
	}
}

func TestCBE_NoKeyStopsAfterFirstPage(t *testing.T) {
	vision := &fakeVision{errs: []error{llm.ErrNoAPIKey, llm.ErrNoAPIKey}}
	res := newCBE(&fakeFetcher{body: []byte("%PDF")}, fakeRasterizer{pages: twoPages()}, vision).
		Verify(context.Background(), entity.VerifyRequest{TransactionID: "FT1", Account: "12345678"})
	if vision.calls != 1 {
		t.Errorf("vision calls = %d, want 1", vision.calls)
	}
	d := res.VerifiedData
	if d == nil || entity.Deref(d.SenderBankName) != constants.CBEBankName {
		t.Errorf("verified data = %+v, want default sender bank", d)
	}
}

func TestClassify(t *testing.T) {
	amount := 10.0
	tests := []struct {
		name string
		o    Outcome
		want string
	}{
		{"failure wins", Outcome{Failure: constants.StatusTimeout, Fields: &extract.Fields{Status: entity.StringPtr("Completed")}}, "Network/Load Timeout"},
		{"completed any case", Outcome{Fields: &extract.Fields{Status: entity.StringPtr("transaction COMPLETED")}}, "Completed"},
		{"raw status", Outcome{Fields: &extract.Fields{Status: entity.StringPtr("Reversed")}}, "Reversed"},
		{"partial", Outcome{Fields: &extract.Fields{Amount: &amount}}, "Partial Data Extracted"},
		{"nothing", Outcome{Fields: &extract.Fields{}}, "PDF_PARSE_FAILED"},
		{"not parsed", Outcome{}, "PDF_PARSE_FAILED"},
	}
	for _, tt := range tests {
		if got := Classify(tt.o, constants.StatusPDFParseFailed); got != tt.want {
			t.Errorf("%s: Classify = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAccountRequired(t *testing.T) {
	res := AccountRequired(constants.CBE, "FT25188TN19J")
	if res.Status != "Account_Number_Required" || res.TransactionID != "FT25188TN19J" {
		t.Errorf("result = %+v", res)
	}
	if res.VerifiedData == nil || res.VerifiedData.SenderName != nil || res.DebugInfo != nil {
		t.Errorf("verified data = %+v", res.VerifiedData)
	}
}
