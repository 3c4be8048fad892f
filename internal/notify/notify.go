// Package notify provides cross-platform desktop notifications.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/statisfy/statisfy/internal/logging"
)

const appTitle = "Statisfy"

// Notifier handles desktop notifications.
type Notifier struct {
	logger  *logging.Logger
	enabled bool
	mu      sync.RWMutex
}

// NewNotifier creates a new notifier.
func NewNotifier(enabled bool, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Notifier{
		logger:  logger,
		enabled: enabled,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// RegistrationFailed tells the user deep links won't work this session.
// The app keeps running either way, so this is informational rather than fatal.
func (n *Notifier) RegistrationFailed(scheme string, cause error) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("Could not register %s:// links with the system.\nLinks from the browser will not open the app.", scheme)

	if err := n.send(appTitle, message); err != nil {
		n.logger.Warn().Err(err).Str("scheme", scheme).Msg("Failed to send registration failure notification")
	}
	n.logger.Error().Err(cause).Str("scheme", scheme).Msg("URI scheme registration failed")
}

// AlreadyRunning tells the user their launch was forwarded to the running window.
func (n *Notifier) AlreadyRunning() {
	if !n.IsEnabled() {
		return
	}

	if err := n.send(appTitle, "Statisfy is already running. Switching to the open window."); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send already-running notification")
	}
}

// send is the internal method that actually sends the notification.
func (n *Notifier) send(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: Uses toast notifications
	// - macOS: Uses NSUserNotificationCenter
	// - Linux: Uses D-Bus notifications
	return beeep.Notify(title, message, "")
}
