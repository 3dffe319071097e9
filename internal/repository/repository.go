package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hiroyagi/yakumemo/internal/models"
)

// wrapStore maps low-level store failures onto the shared error taxonomy so
// callers can distinguish an unreachable store from a logic failure.
func wrapStore(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w (%v)", op, models.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
