package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{63, 30 * time.Second}, // shift overflow also capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"closed channel", errors.New("message channel closed"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"handler error", errors.New("append audit: disk full"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestNilClientPublishIsNoop(t *testing.T) {
	var c *Client
	err := c.PublishSettingsEvent(context.Background(), NewSettingsEvent(1, ActionUpdate, EntityCurrency))
	if err != nil {
		t.Errorf("nil client publish = %v, want nil", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil client close = %v, want nil", err)
	}
}

func TestSettingsEventRoundTrip(t *testing.T) {
	event := NewSettingsEvent(42, ActionCreate, EntityCategory)

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := SettingsEventFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.UserID != 42 || decoded.Action != ActionCreate || decoded.Entity != EntityCategory {
		t.Errorf("round trip = %+v", decoded)
	}

	if _, err := SettingsEventFromJSON([]byte("{")); err == nil {
		t.Error("malformed JSON should fail")
	}
}
