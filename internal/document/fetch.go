// Package document downloads receipt documents over plain HTTP.
package document

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/payment-verifier/internal/common"
)

var (
	// ErrContentType marks a response that is not the expected document type.
	ErrContentType = errors.New("unexpected content type")
	// ErrTransport marks a connection-level failure.
	ErrTransport = errors.New("document transport failed")
	// ErrTooLarge marks a body over the configured size cap.
	ErrTooLarge = errors.New("document too large")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error fetching PDF: %d - %s", e.Code, e.Body)
}

const (
	pdfContentType = "application/pdf"
	maxErrorBody   = 512
	defaultMaxSize = 32 << 20
)

// Options configures a Fetcher.
type Options struct {
	Timeout     time.Duration
	InsecureTLS bool
	MaxBytes    int64 // 0 = 32 MiB
}

// Fetcher downloads PDF documents.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewFetcher builds a fetcher; InsecureTLS skips certificate verification for
// hosts with broken chains.
func NewFetcher(opts Options, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxSize
	}
	return &Fetcher{
		client:   &http.Client{Timeout: opts.Timeout, Transport: transport},
		maxBytes: opts.MaxBytes,
		logger:   logger,
	}
}

// FetchPDF GETs url following redirects and returns the body if it is a PDF.
func (f *Fetcher) FetchPDF(ctx context.Context, url string) ([]byte, error) {
	logger := common.LoggerFromContext(ctx, f.logger)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	logger.Info("document.fetch.request", "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Warn("document.fetch.error", "url", url, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Warn("document.fetch.status", "url", url, "status", resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(ct), pdfContentType) {
		return nil, fmt.Errorf("%w: expected PDF, but received content type: %s", ErrContentType, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	if int64(len(body)) > f.maxBytes {
		logger.Warn("document.fetch.too_large", "url", url, "limit_bytes", f.maxBytes)
		return nil, fmt.Errorf("%w: PDF exceeds %d bytes", ErrTooLarge, f.maxBytes)
	}
	logger.Info("document.fetch.response",
		"url", url,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return body, nil
}
