package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/llm"
)

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		Temperature float32 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Ask implements llm.VisionClient. A 503 is retried with exponential backoff;
// any other failure is returned at once.
func (c *Client) Ask(ctx context.Context, req llm.VisionRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", llm.ErrNoAPIKey
	}
	logger := common.LoggerFromContext(ctx, c.logger)
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}

	mime := req.MimeType
	if mime == "" {
		mime = "image/png"
	}
	body := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: req.Prompt},
				{InlineData: &inlineData{MimeType: mime, Data: base64.StdEncoding.EncodeToString(req.Image)}},
			},
		}},
	}
	body.GenerationConfig.Temperature = c.cfg.Temperature

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, url.QueryEscape(c.cfg.APIKey))

	start := time.Now()
	logger.Info("vision.ask.start", "req_id", rid, "model", c.cfg.Model, "image_bytes", len(req.Image))

	var (
		raw []byte
		err error
	)
	for attempt := 0; ; attempt++ {
		raw, _, err = llm.SendJSON(ctx, c.http, endpoint, body, nil, logger)
		if err == nil || !llm.Unavailable(err) || attempt >= c.cfg.MaxRetries {
			break
		}
		delay := c.cfg.BackoffBase << attempt
		logger.Warn("vision.ask.retry", "req_id", rid, "attempt", attempt+1, "delay_ms", delay.Milliseconds())
		if serr := c.sleep(ctx, delay); serr != nil {
			return "", serr
		}
	}
	if err != nil {
		logger.Error("vision.ask.http_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		logger.Error("vision.ask.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		logger.Warn("vision.ask.empty", "req_id", rid)
		return "", fmt.Errorf("no candidates in gemini response")
	}

	text := llm.NormalizeAnswer(gr.Candidates[0].Content.Parts[0].Text)
	logger.Info("vision.ask.ok", "req_id", rid, "text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}
