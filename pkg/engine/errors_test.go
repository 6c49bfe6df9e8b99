package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient error", &TransientError{Reason: "gpu reset"}, true},
		{"wrapped transient", fmt.Errorf("execute: %w", &TransientError{Reason: "driver"}), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"invalid asset", &InvalidAssetError{Asset: "a.glb", Reason: "no mesh"}, false},
		{"unsupported config", &UnsupportedConfigError{Setting: "render.device", Reason: "no GPU"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := &TransientError{Reason: "ipc", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to be reachable via Unwrap")
	}
}
