package client

import (
	"errors"
	"fmt"
)

// TransientError marks a failure worth retrying after a cool-down: network
// timeouts and provider throttling responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError marks a failure that retrying cannot fix: authentication
// rejections and malformed or unexpected provider payloads.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal provider error: %v", e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retryable after a cool-down
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether err should be recorded without retry
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
