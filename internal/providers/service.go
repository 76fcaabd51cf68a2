// Package providers verifies a transaction against each provider's receipt source.
package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/extract"
)

// Verifier verifies one transaction. It never returns an error: every failure is
// a classified status on the result.
type Verifier interface {
	Provider() constants.Provider
	Verify(ctx context.Context, req entity.VerifyRequest) entity.VerificationResult
}

// Outcome is what a verification run produced before assembly.
type Outcome struct {
	TransactionID string
	// Failure is set when the run stopped before classification.
	Failure constants.Status
	Cause   error
	// Fields is nil unless the parsing stage was reached.
	Fields *extract.Fields
}

func failed(id string, status constants.Status, cause error) Outcome {
	return Outcome{TransactionID: id, Failure: status, Cause: cause}
}

func parsed(id string, f extract.Fields) Outcome {
	return Outcome{TransactionID: id, Fields: &f}
}

// Classify maps an outcome to its terminal status.
func Classify(o Outcome, parseFailure constants.Status) string {
	if o.Failure != "" {
		return o.Failure.String()
	}
	if o.Fields == nil {
		return parseFailure.String()
	}
	if s := entity.Deref(o.Fields.Status); s != "" {
		if constants.IsCompletedText(s) {
			return constants.StatusCompleted.String()
		}
		return s
	}
	if o.Fields.Any() {
		return constants.StatusPartial.String()
	}
	return parseFailure.String()
}

func run(ctx context.Context, logger *slog.Logger, p *profile, id string, fn func(ctx context.Context, logger *slog.Logger) Outcome) entity.VerificationResult {
	logger = common.LoggerFromContext(ctx, logger).With("provider", string(p.provider))
	ctx = common.WithLogger(ctx, logger)
	start := time.Now()
	logger.Info("verify.start", "transaction_id", id)

	o := fn(ctx, logger)
	res := p.assemble(o)

	attrs := []any{
		"transaction_id", res.TransactionID,
		"status", res.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if o.Cause != nil {
		attrs = append(attrs, "error", o.Cause)
	}
	if o.Fields != nil && o.Fields.Sender.Kind == entity.PartyOrganization && o.Fields.Sender.AccountHolder != "" {
		attrs = append(attrs, "sender_account_holder", o.Fields.Sender.AccountHolder)
	}
	if p.isFailure(res.Status) {
		logger.Warn("verify.done", attrs...)
	} else {
		logger.Info("verify.done", attrs...)
	}
	return res
}
