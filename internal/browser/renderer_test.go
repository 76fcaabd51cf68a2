package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"wrapped deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), ErrTimeout},
		{"net error", errors.New("page load error net::ERR_NAME_NOT_RESOLVED"), ErrNavigation},
		{"canceled", context.Canceled, ErrNavigation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("navigate", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAllocatorOptions(t *testing.T) {
	r := NewChromeRenderer(Options{ExecPath: "/usr/bin/chromium", Headless: true}, nil)
	base := len(r.allocatorOptions())

	r2 := NewChromeRenderer(Options{Headless: false}, nil)
	if got := len(r2.allocatorOptions()); got != base-1 {
		t.Errorf("options without exec path = %d, want %d", got, base-1)
	}
}
