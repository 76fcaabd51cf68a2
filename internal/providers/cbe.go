package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/document"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/extract"
	"github.com/joseph-ayodele/payment-verifier/internal/llm"
	"github.com/joseph-ayodele/payment-verifier/internal/normalize"
	"github.com/joseph-ayodele/payment-verifier/internal/ocr"
)

var cbeProfile = &profile{
	provider:       constants.CBE,
	parseFailure:   constants.StatusPDFParseFailed,
	senderBank:     constants.CBEBankName,
	success:        "CBE PDF parsed successfully. Status: %s.",
	providerStatus: "CBE PDF parsed, but status is: %s.",
	partial:        "CBE PDF parsed, partial data extracted.",
	failures: map[constants.Status]string{
		constants.StatusPDFParseFailed:   "CBE PDF was fetched, but no transaction data could be extracted.",
		constants.StatusPDFFetchFailed:   "Failed to fetch the CBE receipt PDF.",
		constants.StatusPDFInvalidFormat: "Invalid account number, or the CBE link did not return a PDF.",
	},
}

// PDFFetcher downloads a receipt PDF.
type PDFFetcher interface {
	FetchPDF(ctx context.Context, url string) ([]byte, error)
}

// PageRasterizer renders PDF pages to images.
type PageRasterizer interface {
	Pages(ctx context.Context, doc []byte) ([]ocr.Page, error)
}

// CBEVerifier verifies Commercial Bank of Ethiopia receipt PDFs.
type CBEVerifier struct {
	fetcher    PDFFetcher
	rasterizer PageRasterizer
	vision     llm.VisionClient
	baseURL    string
	logger     *slog.Logger
}

func NewCBEVerifier(fetcher PDFFetcher, rasterizer PageRasterizer, vision llm.VisionClient, baseURL string, logger *slog.Logger) *CBEVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &CBEVerifier{fetcher: fetcher, rasterizer: rasterizer, vision: vision, baseURL: baseURL, logger: logger}
}

func (v *CBEVerifier) Provider() constants.Provider { return constants.CBE }

// ValidateCBEAccount checks the account number precondition.
func ValidateCBEAccount(account string) error {
	return common.NewValidator().
		Field("account_number", account, common.Required, common.MinLength(constants.CBEAccountSuffixLen)).
		Error()
}

// ReceiptURL is the PDF link; the key is the id plus the last 8 account digits.
func (v *CBEVerifier) ReceiptURL(id, account string) (string, error) {
	u, err := url.Parse(v.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse CBE base url: %w", err)
	}
	q := u.Query()
	q.Set("id", id+common.LastN(strings.TrimSpace(account), constants.CBEAccountSuffixLen))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (v *CBEVerifier) Verify(ctx context.Context, req entity.VerifyRequest) entity.VerificationResult {
	id := strings.TrimSpace(req.TransactionID)
	return run(ctx, v.logger, cbeProfile, id, func(ctx context.Context, logger *slog.Logger) Outcome {
		if id == "" {
			return failed(id, constants.StatusPDFInvalidFormat, errors.New("transaction id is empty"))
		}
		if err := ValidateCBEAccount(req.Account); err != nil {
			return failed(id, constants.StatusPDFInvalidFormat,
				fmt.Errorf("account number must have at least %d digits to construct the PDF link: %w", constants.CBEAccountSuffixLen, err))
		}
		pdfURL, err := v.ReceiptURL(id, req.Account)
		if err != nil {
			return failed(id, constants.StatusPDFInvalidFormat, err)
		}

		doc, err := v.fetcher.FetchPDF(ctx, pdfURL)
		if err != nil {
			return failed(id, fetchFailure(err), err)
		}

		pages, err := v.rasterizer.Pages(ctx, doc)
		if err != nil {
			if errors.Is(err, ocr.ErrNotPDF) {
				return failed(id, constants.StatusPDFInvalidFormat, err)
			}
			return failed(id, constants.StatusPDFParseFailed, fmt.Errorf("parse PDF: %w", err))
		}

		fields := v.readPages(ctx, logger, pages)
		fields.Date = normalize.DatePtr(fields.Date)
		o := parsed(id, fields)
		if !fields.Any() && fields.Status == nil {
			o.Cause = errors.New("no data extracted from the vision service")
		}
		return o
	})
}

// readPages asks the vision service about each page in order and merges the answers first-wins.
func (v *CBEVerifier) readPages(ctx context.Context, logger *slog.Logger, pages []ocr.Page) extract.Fields {
	results := make([]extract.Fields, 0, len(pages))
	for _, p := range pages {
		if ctx.Err() != nil {
			break
		}
		answer, err := v.vision.Ask(ctx, llm.VisionRequest{Prompt: llm.CBEPagePrompt, Image: p.PNG, MimeType: "image/png"})
		if err != nil {
			logger.Warn("cbe.page.ocr_failed", "page", p.Number, "error", err)
			if errors.Is(err, llm.ErrNoAPIKey) {
				break
			}
			continue
		}
		results = append(results, extract.CBEPage(answer))
	}
	logger.Debug("cbe.pages.read", "pages", len(pages), "answers", len(results))
	return extract.MergePages(results)
}

func fetchFailure(err error) constants.Status {
	var se *document.StatusError
	switch {
	case errors.As(err, &se):
		return constants.StatusPDFFetchFailed
	case errors.Is(err, document.ErrContentType), errors.Is(err, document.ErrTooLarge):
		return constants.StatusPDFInvalidFormat
	default:
		return constants.StatusPDFFetchFailed
	}
}
