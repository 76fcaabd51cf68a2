// Package app wires configuration into the verification services shared by the
// HTTP daemon and the batch CLI.
package app

import (
	"log/slog"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/browser"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/discovery"
	"github.com/joseph-ayodele/payment-verifier/internal/document"
	"github.com/joseph-ayodele/payment-verifier/internal/llm/gemini"
	"github.com/joseph-ayodele/payment-verifier/internal/ocr"
	"github.com/joseph-ayodele/payment-verifier/internal/providers"
	"github.com/joseph-ayodele/payment-verifier/internal/server"
)

// App holds the wired provider verifiers and identifier discovery.
type App struct {
	Telebirr   providers.Verifier
	BOA        providers.Verifier
	CBE        providers.Verifier
	Discoverer *discovery.Discoverer
}

// New builds every service from cfg. Nothing external is contacted until a
// verification runs.
func New(cfg *common.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	renderer := browser.NewChromeRenderer(browser.Options{
		ExecPath: cfg.Browser.ExecPath,
		Headless: cfg.Browser.Headless,
	}, logger)
	timeouts := providers.PageTimeouts{
		Navigation: cfg.Browser.NavTimeout,
		Ready:      cfg.Browser.ReadyTimeout,
	}

	vision := gemini.NewClient(gemini.Config{
		APIKey:      cfg.Vision.APIKey,
		BaseURL:     cfg.Vision.BaseURL,
		Model:       cfg.Vision.Model,
		Temperature: cfg.Vision.Temperature,
		Timeout:     cfg.Vision.Timeout,
		MaxRetries:  cfg.Vision.MaxRetries,
		BackoffBase: cfg.Vision.BackoffBase,
	}, logger)

	runner := ocr.ExecRunner{Logger: logger}
	rasterizer := ocr.NewRasterizer(ocr.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, runner, logger)
	heic := ocr.NewHEICConverter(cfg.OCR.HeicConverter, runner, logger)

	fetcher := document.NewFetcher(document.Options{
		Timeout:     cfg.Providers.PDFFetchTimeout,
		InsecureTLS: cfg.Providers.CBEInsecureTLS,
	}, logger)

	return &App{
		Telebirr:   providers.NewTelebirrVerifier(renderer, cfg.Providers.TelebirrBaseURL, timeouts, logger),
		BOA:        providers.NewBOAVerifier(renderer, cfg.Providers.BOABaseURL, timeouts, logger),
		CBE:        providers.NewCBEVerifier(fetcher, rasterizer, vision, cfg.Providers.CBEBaseURL, logger),
		Discoverer: discovery.NewDiscoverer(vision, nil, heic, logger),
	}
}

// Verifier returns the verifier for p.
func (a *App) Verifier(p constants.Provider) (providers.Verifier, bool) {
	switch p {
	case constants.Telebirr:
		return a.Telebirr, a.Telebirr != nil
	case constants.BOA:
		return a.BOA, a.BOA != nil
	case constants.CBE:
		return a.CBE, a.CBE != nil
	}
	return nil, false
}

// ServerDeps adapts the app to the HTTP layer.
func (a *App) ServerDeps() server.Deps {
	return server.Deps{
		Telebirr:   a.Telebirr,
		BOA:        a.BOA,
		CBE:        a.CBE,
		Discoverer: a.Discoverer,
	}
}
