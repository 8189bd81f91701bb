package errors

import (
	"context"
	stderrors "errors"
)

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Code() == code
}
