//go:build !windows

package singleinstance

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Endpoint returns the path of the handoff Unix domain socket.
// On Mac/Linux: ~/.config/statisfy/instance.sock
func Endpoint() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "statisfy-instance.sock")
	}
	return filepath.Join(home, ".config", "statisfy", "instance.sock")
}

// listen creates the handoff Unix domain socket listener.
func listen(endpoint string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(endpoint), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	// Remove any stale socket left by a crashed primary. Safe: the caller
	// already holds the instance lock, so no live primary owns it.
	if err := os.Remove(endpoint); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create handoff socket: %w", err)
	}

	if err := os.Chmod(endpoint, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return listener, nil
}

// dial connects to the primary's handoff socket.
func dial(endpoint string, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	return dialer.Dial("unix", endpoint)
}

// cleanupEndpoint removes the socket file. Called on shutdown.
func cleanupEndpoint(endpoint string) {
	os.Remove(endpoint)
}
