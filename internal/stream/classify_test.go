package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind FailureKind
		wantWait time.Duration
	}{
		{
			name:     "nil error is canceled",
			err:      nil,
			wantKind: FailureCanceled,
		},
		{
			name:     "context canceled",
			err:      context.Canceled,
			wantKind: FailureCanceled,
		},
		{
			name:     "wrapped context canceled",
			err:      fmt.Errorf("stream run: %w", context.Canceled),
			wantKind: FailureCanceled,
		},
		{
			name:     "rate limit with retry hint",
			err:      errors.New("429 too many requests, try again in 120"),
			wantKind: FailureRateLimited,
			wantWait: 120 * time.Second,
		},
		{
			name:     "rate limit without hint",
			err:      errors.New("request was throttled by upstream"),
			wantKind: FailureRateLimited,
		},
		{
			name:     "user not found is terminal",
			err:      errors.New("target user not found"),
			wantKind: FailureTerminal,
		},
		{
			name:     "not live is terminal",
			err:      errors.New("user is not currently live"),
			wantKind: FailureTerminal,
		},
		{
			name:     "stream ended is terminal",
			err:      errors.New("stream ended"),
			wantKind: FailureTerminal,
		},
		{
			name:     "network error is transient",
			err:      errors.New("dial tcp: connection refused"),
			wantKind: FailureTransient,
		},
		{
			name:     "unclassified error is transient",
			err:      errors.New("something inexplicable"),
			wantKind: FailureTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Classify().Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Wait != tt.wantWait {
				t.Errorf("Classify().Wait = %v, want %v", got.Wait, tt.wantWait)
			}
		})
	}
}

func TestExtractRetryHint(t *testing.T) {
	tests := []struct {
		text string
		want time.Duration
	}{
		{"try again in 120", 120 * time.Second},
		{"retry after 60", 60 * time.Second},
		{"please wait 30 before reconnecting", 30 * time.Second},
		{"try again later", 0},
		{"try again in -5", 0},
	}

	for _, tt := range tests {
		if got := extractRetryHint(tt.text); got != tt.want {
			t.Errorf("extractRetryHint(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
