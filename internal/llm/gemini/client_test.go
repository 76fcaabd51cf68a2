package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/payment-verifier/internal/llm"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":"  Transaction ID: FT25188TN19J \n"}]}}]}`

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "m", MaxRetries: retries, BackoffBase: time.Second}, nil)
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestAsk_RequestShape(t *testing.T) {
	var got generateRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/m:generateContent" || r.URL.Query().Get("key") != "k" {
			t.Errorf("unexpected url %s", r.URL.String())
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(okBody))
	}, 0)
	c.cfg.Temperature = 0.1

	text, err := c.Ask(context.Background(), llm.VisionRequest{Prompt: "p", Image: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Transaction ID: FT25188TN19J" {
		t.Errorf("text = %q", text)
	}
	if len(got.Contents) != 1 || got.Contents[0].Role != "user" || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("contents = %+v", got.Contents)
	}
	img := got.Contents[0].Parts[1].InlineData
	if img == nil || img.MimeType != "image/png" || img.Data != "AQID" {
		t.Errorf("inline data = %+v", img)
	}
	if got.GenerationConfig.Temperature != 0.1 {
		t.Errorf("temperature = %v", got.GenerationConfig.Temperature)
	}
}

func TestAsk_RetriesOn503(t *testing.T) {
	var calls int32
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(okBody))
	}, 3)

	if _, err := c.Ask(context.Background(), llm.VisionRequest{Prompt: "p"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("backoff = %v, want %v", *slept, want)
	}
}

func TestAsk_ExhaustedRetries(t *testing.T) {
	var calls int32
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 3)

	_, err := c.Ask(context.Background(), llm.VisionRequest{Prompt: "p"})
	if !llm.Unavailable(err) {
		t.Fatalf("err = %v, want 503 status error", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want initial call plus 3 retries", calls)
	}
	if got := (*slept)[len(*slept)-1]; got != 4*time.Second {
		t.Errorf("last backoff = %v, want 4s", got)
	}
}

func TestAsk_NoRetryOnOtherStatus(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad", http.StatusBadRequest)
	}, 3)

	_, err := c.Ask(context.Background(), llm.VisionRequest{Prompt: "p"})
	var se *llm.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAsk_NoAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	c := NewClient(Config{}, nil)
	if _, err := c.Ask(context.Background(), llm.VisionRequest{}); !errors.Is(err, llm.ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestAsk_EmptyCandidates(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}, 0)
	_, err := c.Ask(context.Background(), llm.VisionRequest{})
	if err == nil || !strings.Contains(err.Error(), "no candidates") {
		t.Errorf("err = %v", err)
	}
}
