// Package constants holds shared tuning values used across packages.
package constants

import "time"

// Event bus sizing
const (
	// EventBusDefaultBuffer - per-subscriber channel buffer.
	// Activations are rare (user-driven), so a small buffer is ample;
	// the bus drops on overflow rather than blocking producers.
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - upper bound for caller-supplied buffer sizes.
	EventBusMaxBuffer = 4096
)

// Single-instance handoff timing
const (
	// HandoffDialTimeout - how long a secondary waits to reach the primary's
	// socket before treating the primary as unreachable.
	HandoffDialTimeout = 500 * time.Millisecond

	// HandoffIOTimeout - deadline for writing the invocation and reading the
	// acknowledgement on an established handoff connection.
	HandoffIOTimeout = 2 * time.Second

	// HandoffRetryWindow - total time a secondary keeps retrying the handoff
	// connection. Covers the gap between a racing winner taking the lock and
	// its listener coming up.
	HandoffRetryWindow = 1 * time.Second

	// HandoffRetryInterval - pause between handoff connection attempts.
	HandoffRetryInterval = 50 * time.Millisecond
)

// DefaultScheme is the URI scheme this application claims when the
// configuration does not override it.
const DefaultScheme = "statisfy"

// DeepLinkEventName is the fixed outbound event name the bridge publishes
// deep-link URLs under. Stable across versions; the frontend subscribes to it.
const DeepLinkEventName = "deep-link"

// LogEventName is the outbound event name for application log messages
// forwarded to the frontend diagnostics panel.
const LogEventName = "app-log"
