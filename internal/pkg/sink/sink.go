// Package sink holds the remote document stores a travel book can be synced to.
package sink

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/booksync"
)

// Unconfigured rejects every write with the configuration error it was
// built from, so a missing credential surfaces at sync time instead of
// keeping the server from starting.
type Unconfigured struct {
	Err error
}

func (u Unconfigured) Write(context.Context, booksync.DocumentKey, map[string]any) error {
	if u.Err == nil {
		return booksync.ErrMissingCredential
	}
	return u.Err
}

// asUnavailable tags transport level failures.
func asUnavailable(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", booksync.ErrUnavailable, err)
	}
	return nil
}
