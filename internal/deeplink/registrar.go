// Package deeplink registers the application as the OS handler for its URI
// scheme and relays activation URLs to the frontend as events.
package deeplink

import (
	"errors"
	"fmt"
	"sync"

	"github.com/statisfy/statisfy/internal/logging"
)

// Registration failure categories. All are recoverable: the application
// keeps running without deep-link capability.
var (
	// ErrUnsupportedPlatform - the platform has no scheme-registration mechanism we support.
	ErrUnsupportedPlatform = errors.New("scheme registration not supported on this platform")

	// ErrPermissionDenied - the OS refused to record the association.
	ErrPermissionDenied = errors.New("permission denied registering scheme")

	// ErrSchemeConflict - another application owns the scheme.
	ErrSchemeConflict = errors.New("scheme is registered to another application")
)

// ActivateFunc receives the URLs carried by one OS activation.
type ActivateFunc func(urls []string)

// backend is the OS-facing half of the registrar. Register mutates the
// platform's persistent scheme association; it outlives the process.
type backend interface {
	Register(scheme string) error
}

// Registrar associates the URI scheme with this application at the OS level
// and exposes the hook the OS activation path calls into.
type Registrar struct {
	scheme  string
	backend backend
	logger  *logging.Logger

	mu         sync.Mutex
	onActivate ActivateFunc
	registered bool
}

// NewRegistrar creates a registrar for the given scheme using the current
// platform's registration mechanism.
func NewRegistrar(scheme string, logger *logging.Logger) *Registrar {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Registrar{
		scheme:  scheme,
		backend: newPlatformBackend(logger),
		logger:  logger,
	}
}

// newRegistrarWithBackend wires a custom backend. Used in tests.
func newRegistrarWithBackend(scheme string, b backend, logger *logging.Logger) *Registrar {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Registrar{
		scheme:  scheme,
		backend: b,
		logger:  logger,
	}
}

// Scheme returns the scheme this registrar claims.
func (r *Registrar) Scheme() string {
	return r.scheme
}

// Register associates the scheme with the current executable. Idempotent:
// after one success in this process, further calls are no-op successes, and
// the platform backends themselves tolerate re-registration across restarts.
func (r *Registrar) Register() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.registered {
		return nil
	}

	if err := r.backend.Register(r.scheme); err != nil {
		return fmt.Errorf("register scheme %q: %w", r.scheme, err)
	}

	r.registered = true
	r.logger.Info().Str("scheme", r.scheme).Msg("URI scheme registered")
	return nil
}

// OnActivate installs the listener invoked with each scheme activation.
// The OS may call the activation path from its own thread; the listener must
// be safe for that (publishing to the event bus is).
func (r *Registrar) OnActivate(fn ActivateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onActivate = fn
}

// Deliver routes one OS activation's URLs into the installed listener.
// Called by the platform activation hook (and by the bootstrap for
// cold-start invocations). A no-op when no listener is installed.
func (r *Registrar) Deliver(urls []string) {
	if len(urls) == 0 {
		return
	}

	r.mu.Lock()
	fn := r.onActivate
	r.mu.Unlock()

	if fn == nil {
		r.logger.Debug().Int("urls", len(urls)).Msg("Activation before listener installed; dropped")
		return
	}
	fn(urls)
}
