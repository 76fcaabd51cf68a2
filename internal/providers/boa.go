package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/browser"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/extract"
)

const boaHeading = `//h1[contains(@class, "text-center") and contains(normalize-space(.), "Receipt")]`

var boaProfile = &profile{
	provider:       constants.BOA,
	parseFailure:   constants.StatusFailed,
	senderBank:     constants.BOABankName,
	success:        "BOA transaction verified successfully. Status: %s.",
	providerStatus: "BOA slip found, but status is: %s.",
	partial:        "BOA slip found, but only partial details could be extracted.",
	failures: map[constants.Status]string{
		constants.StatusFailed:       "BOA slip could not be read for this transaction.",
		constants.StatusTimeout:      "Timed out while loading the BOA slip page.",
		constants.StatusBrowserError: "A browser error occurred while loading the BOA slip page.",
		constants.StatusInvalidInput: "Sender account must have at least 5 characters.",
	},
}

// BOAVerifier verifies Bank of Abyssinia transfer slips.
type BOAVerifier struct {
	renderer browser.Renderer
	baseURL  string
	timeouts PageTimeouts
	logger   *slog.Logger
}

func NewBOAVerifier(renderer browser.Renderer, baseURL string, timeouts PageTimeouts, logger *slog.Logger) *BOAVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &BOAVerifier{renderer: renderer, baseURL: baseURL, timeouts: timeouts, logger: logger}
}

func (v *BOAVerifier) Provider() constants.Provider { return constants.BOA }

// ValidateBOAAccount checks the sender account precondition.
func ValidateBOAAccount(account string) error {
	return common.NewValidator().
		Field("sender_account", account, common.Required, common.MinLength(constants.BOAAccountSuffixLen)).
		Error()
}

// SlipURL is the slip page of a transaction; the key is the id plus the last 5 account characters.
func (v *BOAVerifier) SlipURL(id, account string) (string, error) {
	u, err := url.Parse(v.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse BOA base url: %w", err)
	}
	q := u.Query()
	q.Set("trx", id+common.LastN(strings.TrimSpace(account), constants.BOAAccountSuffixLen))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (v *BOAVerifier) Verify(ctx context.Context, req entity.VerifyRequest) entity.VerificationResult {
	id := strings.TrimSpace(req.TransactionID)
	return run(ctx, v.logger, boaProfile, id, func(ctx context.Context, logger *slog.Logger) Outcome {
		if id == "" {
			return failed(id, constants.StatusInvalidInput, errors.New("transaction id is empty"))
		}
		if err := ValidateBOAAccount(req.Account); err != nil {
			return failed(id, constants.StatusInvalidInput, err)
		}
		slipURL, err := v.SlipURL(id, req.Account)
		if err != nil {
			return failed(id, constants.StatusFailed, err)
		}

		page, err := v.renderer.Render(ctx, browser.RenderRequest{
			URL:            slipURL,
			ReadySelectors: []string{boaHeading, extract.BOASlipTable},
			NavTimeout:     v.timeouts.Navigation,
			ReadyTimeout:   v.timeouts.Ready,
		})
		if err != nil {
			return failed(id, renderFailure(err), err)
		}

		fields, found, err := extract.BOA(strings.NewReader(page.HTML))
		if err != nil {
			return failed(id, constants.StatusFailed, err)
		}
		if !found {
			logger.Warn("boa.slip_table_missing")
			return Outcome{TransactionID: id, Fields: &extract.Fields{}, Cause: errors.New("slip table not found")}
		}
		fields.Status = entity.StringPtr(constants.StatusCompleted.String())
		return parsed(id, fields)
	})
}
