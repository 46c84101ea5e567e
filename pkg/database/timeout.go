package database

import (
	"context"
	"errors"
	"time"

	"github.com/hourbook/hourbook/pkg/apperrors"
)

// WithTimeout bounds ctx by the store deadline. Every external call runs
// under such a deadline; expiry surfaces as apperrors.ErrTimeout.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 8 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// TranslateErr maps context cancellation errors onto the store error kinds.
// Other errors pass through unchanged.
func TranslateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.ErrTimeout
	case errors.Is(err, context.Canceled):
		return apperrors.ErrStoreUnavailable
	default:
		return err
	}
}
