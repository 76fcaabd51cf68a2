package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/browser"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/extract"
)

const (
	telebirrReady   = `//td[contains(normalize-space(.), "telebirr Transaction information")]`
	telebirrMissing = `//*[contains(translate(normalize-space(text()), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), "transaction not found") or contains(translate(normalize-space(text()), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), "invalid transaction")]`
)

var telebirrProfile = &profile{
	provider:       constants.Telebirr,
	parseFailure:   constants.StatusFailed,
	success:        "Transaction verification successful. Status: %s.",
	providerStatus: "Transaction verification found, but status is: %s.",
	partial:        "Transaction page found, but status could not be determined.",
	failures: map[constants.Status]string{
		constants.StatusFailed:               "Transaction page was loaded, but no receipt details could be extracted.",
		constants.StatusTimeout:              "Timed out while loading the Telebirr receipt page.",
		constants.StatusBrowserError:         "A browser error occurred while loading the Telebirr receipt page.",
		constants.StatusInvalidTransactionID: "No Telebirr receipt exists for this transaction ID.",
		constants.StatusInvalidInput:         "A transaction ID is required.",
	},
}

// PageTimeouts bounds page rendering.
type PageTimeouts struct {
	Navigation time.Duration
	Ready      time.Duration
}

// TelebirrVerifier verifies wallet receipts from the public receipt page.
type TelebirrVerifier struct {
	renderer browser.Renderer
	baseURL  string
	timeouts PageTimeouts
	logger   *slog.Logger
}

func NewTelebirrVerifier(renderer browser.Renderer, baseURL string, timeouts PageTimeouts, logger *slog.Logger) *TelebirrVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelebirrVerifier{renderer: renderer, baseURL: baseURL, timeouts: timeouts, logger: logger}
}

func (v *TelebirrVerifier) Provider() constants.Provider { return constants.Telebirr }

// ReceiptURL is the public receipt page of a transaction.
func (v *TelebirrVerifier) ReceiptURL(id string) string {
	return strings.TrimRight(v.baseURL, "/") + "/" + url.PathEscape(id)
}

func (v *TelebirrVerifier) Verify(ctx context.Context, req entity.VerifyRequest) entity.VerificationResult {
	id := strings.TrimSpace(req.TransactionID)
	return run(ctx, v.logger, telebirrProfile, id, func(ctx context.Context, logger *slog.Logger) Outcome {
		if id == "" {
			return failed(id, constants.StatusInvalidInput, errors.New("transaction id is empty"))
		}
		page, err := v.renderer.Render(ctx, browser.RenderRequest{
			URL:             v.ReceiptURL(id),
			ReadySelectors:  []string{telebirrReady},
			MissingSelector: telebirrMissing,
			NavTimeout:      v.timeouts.Navigation,
			ReadyTimeout:    v.timeouts.Ready,
		})
		if err != nil {
			return failed(id, renderFailure(err), err)
		}
		if page.Missing {
			return failed(id, constants.StatusInvalidTransactionID, errors.New("receipt page reports unknown transaction"))
		}
		fields, err := extract.Telebirr(strings.NewReader(page.HTML), id)
		if err != nil {
			return failed(id, constants.StatusFailed, err)
		}
		// the envelope keeps the caller's identifier
		fields.TransactionID = nil
		return parsed(id, fields)
	})
}

func renderFailure(err error) constants.Status {
	switch {
	case errors.Is(err, browser.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return constants.StatusTimeout
	case errors.Is(err, browser.ErrNavigation):
		return constants.StatusBrowserError
	default:
		return constants.StatusFailed
	}
}
