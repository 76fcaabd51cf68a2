// Package browser renders receipt pages in a headless Chrome.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/joseph-ayodele/payment-verifier/internal/common"
)

var (
	// ErrTimeout is returned when navigation or the ready wait exceeds its budget.
	ErrTimeout = errors.New("page load timeout")
	// ErrNavigation is returned for any other browser or navigation fault.
	ErrNavigation = errors.New("browser navigation failed")
)

// RenderRequest describes one page to render.
type RenderRequest struct {
	URL string
	// ReadySelectors must all become visible before the page counts as loaded.
	// Selectors are CSS or XPath (DOM search syntax).
	ReadySelectors []string
	// MissingSelector, if set and present right after navigation, marks an unknown identifier.
	MissingSelector string
	NavTimeout      time.Duration
	ReadyTimeout    time.Duration
}

// RenderedPage is the page body after the ready wait.
type RenderedPage struct {
	HTML    string
	Missing bool
}

// Renderer renders a page and returns its HTML.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (RenderedPage, error)
}

// Options configures the Chrome process.
type Options struct {
	ExecPath string
	Headless bool
}

// ChromeRenderer starts a fresh browser per Render call.
type ChromeRenderer struct {
	opts   Options
	logger *slog.Logger
}

// NewChromeRenderer creates a renderer backed by chromedp.
func NewChromeRenderer(opts Options, logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromeRenderer{opts: opts, logger: logger}
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", r.opts.Headless))
	if r.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.opts.ExecPath))
	}
	return opts
}

// Render navigates to req.URL, checks the missing marker and waits for the ready selectors.
func (r *ChromeRenderer) Render(ctx context.Context, req RenderRequest) (RenderedPage, error) {
	logger := common.LoggerFromContext(ctx, r.logger)
	start := time.Now()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// first Run launches the browser; it must not carry a step timeout
	if err := chromedp.Run(browserCtx); err != nil {
		logger.Error("browser.start.failed", "error", err)
		return RenderedPage{}, fmt.Errorf("%w: start browser: %v", ErrNavigation, err)
	}

	logger.Info("browser.navigate", "url", req.URL)
	if err := runWithTimeout(browserCtx, req.NavTimeout, chromedp.Navigate(req.URL)); err != nil {
		logger.Warn("browser.navigate.failed", "url", req.URL, "error", err)
		return RenderedPage{}, classify("navigate", err)
	}

	if req.MissingSelector != "" {
		var nodes []*cdp.Node
		err := runWithTimeout(browserCtx, req.ReadyTimeout,
			chromedp.Nodes(req.MissingSelector, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
		if err != nil {
			return RenderedPage{}, classify("missing marker", err)
		}
		if len(nodes) > 0 {
			logger.Info("browser.missing_marker", "url", req.URL)
			return RenderedPage{Missing: true}, nil
		}
	}

	actions := make([]chromedp.Action, 0, len(req.ReadySelectors)+1)
	for _, sel := range req.ReadySelectors {
		actions = append(actions, chromedp.WaitVisible(sel, chromedp.BySearch))
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err := runWithTimeout(browserCtx, req.ReadyTimeout, actions...); err != nil {
		logger.Warn("browser.ready.failed", "url", req.URL, "error", err)
		return RenderedPage{}, classify("wait for content", err)
	}

	logger.Info("browser.rendered", "url", req.URL, "bytes", len(html), "duration_ms", time.Since(start).Milliseconds())
	return RenderedPage{HTML: html}, nil
}

func runWithTimeout(ctx context.Context, d time.Duration, actions ...chromedp.Action) error {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

func classify(step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, step, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrNavigation, step, err)
}
