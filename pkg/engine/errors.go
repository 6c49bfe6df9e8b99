package engine

import (
	"context"
	"errors"
	"fmt"
)

// TransientError reports a device or driver hiccup that a retry of the same
// request may clear. Call timeouts are treated as transient too.
type TransientError struct {
	Reason string
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine: transient: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("engine: transient: %s", e.Reason)
}

func (e *TransientError) Unwrap() error { return e.Err }

// InvalidAssetError reports an asset the engine cannot load. Deterministic:
// retrying the same request cannot succeed.
type InvalidAssetError struct {
	Asset  string
	Reason string
}

func (e *InvalidAssetError) Error() string {
	return fmt.Sprintf("engine: invalid asset %q: %s", e.Asset, e.Reason)
}

// UnsupportedConfigError reports a render or physics setting the engine
// rejects. Deterministic, never retried.
type UnsupportedConfigError struct {
	Setting string
	Reason  string
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("engine: unsupported %s: %s", e.Setting, e.Reason)
}

// IsTransient reports whether an engine call failed in a way worth retrying
// with the same request. Context deadline expiry counts; cancellation does
// not, since a canceled batch must stop rather than retry.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
