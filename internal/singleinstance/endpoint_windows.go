//go:build windows

package singleinstance

import (
	"context"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

// PipeName is the Windows named pipe path for the instance handoff channel.
const PipeName = `\\.\pipe\statisfy-instance`

// Endpoint returns the handoff endpoint. On Windows, this is a named pipe path.
func Endpoint() string {
	return PipeName
}

// listen creates the handoff named pipe listener.
func listen(endpoint string) (net.Listener, error) {
	cfg := &winio.PipeConfig{
		// Allow authenticated users
		SecurityDescriptor: "D:P(A;;GA;;;AU)",
		InputBufferSize:    65536,
		OutputBufferSize:   65536,
	}

	return winio.ListenPipe(endpoint, cfg)
}

// dial connects to the primary's handoff pipe.
func dial(endpoint string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return winio.DialPipeContext(ctx, endpoint)
}

// cleanupEndpoint is a no-op on Windows (named pipes are cleaned up automatically).
func cleanupEndpoint(string) {}
