// Package discovery recovers a transaction identifier from an uploaded receipt image.
package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"regexp"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/extract"
	"github.com/joseph-ayodele/payment-verifier/internal/llm"
)

// Mode selects the discovery strategy.
type Mode int

const (
	// ModeOCR asks the vision service only.
	ModeOCR Mode = iota
	// ModeQRThenOCR tries a QR code first and falls back to the vision service.
	ModeQRThenOCR
)

var (
	// CBE receipt links end in ?id=<reference><8-digit account fragment>
	reQRLink     = regexp.MustCompile(`id=([A-Za-z0-9]+?)(\d{8})(?:$|[^0-9])`)
	reAnswer     = regexp.MustCompile(`(?i)Transaction ID:\s*([A-Z0-9]+(?:[ \t]+Found)?)`)
	reAnswerLine = regexp.MustCompile(`(?i)Transaction ID:[ \t]*([^\r\n]*)`)
)

// Upload is an uploaded image with its declared type.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// HEICConverter converts HEIC/HEIF bytes to PNG.
type HEICConverter interface {
	ToPNG(ctx context.Context, heic []byte) ([]byte, error)
}

// Discoverer runs identifier discovery.
type Discoverer struct {
	vision llm.VisionClient
	qr     QRDecoder
	heic   HEICConverter
	logger *slog.Logger
}

// NewDiscoverer wires the vision client, QR decoder and optional HEIC converter.
func NewDiscoverer(vision llm.VisionClient, qr QRDecoder, heic HEICConverter, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	if qr == nil {
		qr = ZXingDecoder{}
	}
	return &Discoverer{vision: vision, qr: qr, heic: heic, logger: logger}
}

// Discover returns the identifier found in the upload. Undecodable images yield
// common.ErrInvalidImage; an empty Identifier means nothing was found.
func (d *Discoverer) Discover(ctx context.Context, up Upload, mode Mode) (entity.Identifier, error) {
	logger := common.LoggerFromContext(ctx, d.logger)

	data, mime, err := d.prepare(ctx, up)
	if err != nil {
		return entity.Identifier{}, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("discovery.decode_failed", "filename", up.Filename, "error", err)
		return entity.Identifier{}, common.NewAppError("INVALID_IMAGE", "uploaded file is not a readable image", fmt.Errorf("%w: %v", common.ErrInvalidImage, err))
	}
	if mime == "" {
		mime = "image/" + format
	}

	if mode == ModeQRThenOCR {
		if id, ok := d.fromQR(img); ok {
			logger.Info("discovery.qr.hit", "transaction_id", entity.Deref(id.TransactionID))
			return id, nil
		}
		logger.Info("discovery.qr.miss")
	}

	id := d.fromOCR(ctx, data, mime, logger)
	return entity.Identifier{TransactionID: id}, nil
}

func (d *Discoverer) prepare(ctx context.Context, up Upload) ([]byte, string, error) {
	if len(up.Data) == 0 {
		return nil, "", common.NewAppError("INVALID_IMAGE", "uploaded file is empty", common.ErrInvalidImage)
	}
	ext := constants.NormalizeExt(extOf(up.Filename))
	isHEIC := constants.IsHEICExt(ext) || strings.Contains(strings.ToLower(up.ContentType), "hei")
	if !isHEIC {
		return up.Data, imageMime(up.ContentType), nil
	}
	if d.heic == nil {
		return nil, "", common.NewAppError("INVALID_IMAGE", "HEIC images are not supported", common.ErrInvalidImage)
	}
	png, err := d.heic.ToPNG(ctx, up.Data)
	if err != nil {
		return nil, "", common.NewAppError("INVALID_IMAGE", "could not convert HEIC image", fmt.Errorf("%w: %v", common.ErrInvalidImage, err))
	}
	return png, "image/png", nil
}

func (d *Discoverer) fromQR(img image.Image) (entity.Identifier, bool) {
	text, ok := d.qr.Decode(img)
	if !ok {
		return entity.Identifier{}, false
	}
	return ParseQRPayload(text)
}

// ParseQRPayload splits a CBE receipt link into reference and account fragment.
func ParseQRPayload(text string) (entity.Identifier, bool) {
	m := reQRLink.FindStringSubmatch(strings.TrimSpace(text))
	if len(m) < 3 {
		return entity.Identifier{}, false
	}
	ref := strings.ToUpper(m[1])
	acct := m[2]
	return entity.Identifier{TransactionID: &ref, AccountFragment: &acct}, true
}

func (d *Discoverer) fromOCR(ctx context.Context, data []byte, mime string, logger *slog.Logger) *string {
	if d.vision == nil {
		return nil
	}
	answer, err := d.vision.Ask(ctx, llm.VisionRequest{Prompt: llm.IdentifierPrompt, Image: data, MimeType: mime})
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			logger.Warn("discovery.ocr.skipped", "reason", "no api key")
		} else {
			logger.Warn("discovery.ocr.failed", "error", err)
		}
		return nil
	}
	return ParseAnswer(answer)
}

// ParseAnswer extracts the identifier from a "Transaction ID: X" answer.
func ParseAnswer(answer string) *string {
	if line := reAnswerLine.FindStringSubmatch(answer); len(line) == 2 && extract.IsPlaceholder(line[1]) {
		return nil
	}
	m := reAnswer.FindStringSubmatch(answer)
	if len(m) < 2 {
		return nil
	}
	id := strings.ToUpper(strings.TrimSpace(m[1]))
	if strings.HasPrefix(id, "NOT") && strings.HasSuffix(id, "FOUND") {
		return nil
	}
	return &id
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func imageMime(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return ""
}
