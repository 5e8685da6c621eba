// Package systemd reloads service units over the systemd D-Bus API.
package systemd

import (
	"context"
	"errors"
	"fmt"

	sddbus "github.com/coreos/go-systemd/v22/dbus"

	"github.com/ksyq12/vhostfrag/internal/logger"
)

// ErrUnavailable is returned when the system bus cannot be reached.
// Callers fall back to other reload methods.
var ErrUnavailable = errors.New("systemd D-Bus unavailable")

// Reloader reloads a service unit.
type Reloader interface {
	Reload(ctx context.Context, unit string) error
}

// unitConn is the subset of *sddbus.Conn used here.
type unitConn interface {
	ReloadUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	Close()
}

// DBusReloader reloads units through systemd's D-Bus interface.
type DBusReloader struct {
	dial func(ctx context.Context) (unitConn, error)
}

// NewDBusReloader creates a reloader connected to the system bus on each call.
func NewDBusReloader() *DBusReloader {
	return &DBusReloader{
		dial: func(ctx context.Context) (unitConn, error) {
			conn, err := sddbus.NewWithContext(ctx)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}
}

// Reload queues a reload job for unit in "replace" mode and waits for it.
func (r *DBusReloader) Reload(ctx context.Context, unit string) error {
	conn, err := r.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	done := make(chan string, 1)
	if _, err := conn.ReloadUnitContext(ctx, unit, "replace", done); err != nil {
		return fmt.Errorf("failed to reload %s: %w", unit, err)
	}

	select {
	case result := <-done:
		logger.DebugFields("systemd job finished", logger.Fields{"unit": unit, "result": result})
		if result != "done" {
			return fmt.Errorf("reload of %s finished with %q", unit, result)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
