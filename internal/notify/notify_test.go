package notify

import (
	"errors"
	"testing"
)

func TestNotifierEnableToggle(t *testing.T) {
	n := NewNotifier(false, nil)
	if n.IsEnabled() {
		t.Fatal("Expected notifier to start disabled")
	}

	// A disabled notifier must swallow every notification without touching
	// the desktop notification system.
	n.AlreadyRunning()
	n.RegistrationFailed("statisfy", errors.New("registry locked"))

	n.SetEnabled(true)
	if !n.IsEnabled() {
		t.Fatal("Expected notifier to be enabled after SetEnabled(true)")
	}

	n.SetEnabled(false)
	if n.IsEnabled() {
		t.Fatal("Expected notifier to be disabled after SetEnabled(false)")
	}
}
