package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dslipak/pdf"
)

// ErrNotPDF is returned when the document cannot be opened as a PDF.
var ErrNotPDF = errors.New("document is not a readable PDF")

// Config controls rasterization.
type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // default 144 (2x of 72)
	MaxPages int    // 0 = no limit
}

// Page is one rendered PDF page.
type Page struct {
	Number int
	PNG    []byte
}

// Rasterizer renders PDF pages to PNG images.
type Rasterizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewRasterizer applies defaults; a nil runner uses the host's binaries.
func NewRasterizer(cfg Config, runner Runner, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 144
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Rasterizer{cfg: cfg, runner: runner, logger: logger}
}

// PageCount reads the page tree of a PDF.
func PageCount(doc []byte) (n int, err error) {
	defer func() {
		// the parser panics on some malformed inputs
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()
	rd, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return rd.NumPage(), nil
}

// Pages renders every page of doc, in order.
func (r *Rasterizer) Pages(ctx context.Context, doc []byte) ([]Page, error) {
	count, err := PageCount(doc)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrNotPDF)
	}
	if r.cfg.MaxPages > 0 && count > r.cfg.MaxPages {
		r.logger.Warn("pdf page limit applied", "pages", count, "max_pages", r.cfg.MaxPages)
		count = r.cfg.MaxPages
	}

	tmpDir, err := os.MkdirTemp("", "pv-pdf-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	in := filepath.Join(tmpDir, "receipt.pdf")
	if err := os.WriteFile(in, doc, 0o600); err != nil {
		return nil, err
	}

	pages := make([]Page, 0, count)
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		png, err := r.renderPage(ctx, in, tmpDir, n)
		if err != nil {
			return nil, err
		}
		pages = append(pages, Page{Number: n, PNG: png})
	}
	r.logger.Debug("pdf rasterized", "pages", len(pages), "dpi", r.cfg.DPI)
	return pages, nil
}

func (r *Rasterizer) renderPage(ctx context.Context, in, dir string, n int) ([]byte, error) {
	prefix := filepath.Join(dir, "page-"+strconv.Itoa(n))
	num := strconv.Itoa(n)
	// pdftoppm -r <dpi> -png -f N -l N -singlefile <in.pdf> <prefix>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", strconv.Itoa(r.cfg.DPI), "-png", "-f", num, "-l", num, "-singlefile", in, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w (%s)", n, err, truncate(string(errb), 512))
	}
	out, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d: %w", n, err)
	}
	return out, nil
}
