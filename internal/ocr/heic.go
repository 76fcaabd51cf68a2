package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// HEICConverter converts HEIC/HEIF uploads to PNG with an external tool.
type HEICConverter struct {
	converter string
	runner    Runner
	logger    *slog.Logger
}

// NewHEICConverter builds a converter; a nil runner uses the host's binaries.
func NewHEICConverter(converter string, runner Runner, logger *slog.Logger) *HEICConverter {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &HEICConverter{converter: converter, runner: runner, logger: logger}
}

// ToPNG converts HEIC bytes to PNG bytes.
func (c *HEICConverter) ToPNG(ctx context.Context, heic []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "pv-heic-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	in := filepath.Join(tmpDir, "upload.heic")
	out := filepath.Join(tmpDir, "upload.png")
	if err := os.WriteFile(in, heic, 0o600); err != nil {
		return nil, err
	}

	var errb []byte
	switch c.converter {
	case "heif-convert":
		_, errb, err = c.runner.Run(ctx, "heif-convert", in, out)
	case "magick":
		_, errb, err = c.runner.Run(ctx, "magick", in, out)
	case "sips":
		_, errb, err = c.runner.Run(ctx, "sips", "-s", "format", "png", in, "--out", out)
	default:
		return nil, fmt.Errorf("HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips")
	}
	if err != nil {
		c.logger.Error("heic conversion failed", "converter", c.converter, "error", err)
		return nil, fmt.Errorf("%s convert failed: %w (%s)", c.converter, err, truncate(string(errb), 512))
	}

	png, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("HEIC conversion produced no output: %w", err)
	}
	return png, nil
}
