package amqp

import (
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
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
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
		{"connection closed", errors.New("connection closed by server"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"handler error", errors.New("mirror snapshot: bad sheet"), false},
		{"auth error", errors.New("ACCESS_REFUSED - login refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestStateChangedMessageRoundTrip(t *testing.T) {
	msg := NewStateChangedMessage(42)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	got, err := StateChangedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if got.Revision != 42 {
		t.Fatalf("revision = %d, want 42", got.Revision)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("timestamp not carried")
	}
}

func TestStateChangedMessageBadJSON(t *testing.T) {
	if _, err := StateChangedMessageFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}
