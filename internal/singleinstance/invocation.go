// Package singleinstance enforces the one-running-process invariant and
// carries launch invocations from losing (secondary) processes to the
// winning (primary) one.
//
// The tie-break is an atomic file lock; the handoff channel is a Unix domain
// socket on Mac/Linux and a named pipe on Windows. Messages are
// newline-delimited JSON.
package singleinstance

import (
	"encoding/json"
	"os"
)

// Invocation is the launch invocation of a process: the full argument list
// and the working directory it started in. Captured once at startup and
// immutable afterwards.
type Invocation struct {
	Args       []string `json:"args"`
	WorkingDir string   `json:"working_dir"`
	PID        int      `json:"pid"`
}

// CurrentInvocation captures the running process's own invocation.
func CurrentInvocation() Invocation {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	args := make([]string, len(os.Args))
	copy(args, os.Args)
	return Invocation{
		Args:       args,
		WorkingDir: wd,
		PID:        os.Getpid(),
	}
}

// Encode serializes an Invocation to JSON bytes (without trailing newline).
func (i *Invocation) Encode() ([]byte, error) {
	return json.Marshal(i)
}

// DecodeInvocation deserializes an Invocation from JSON bytes.
func DecodeInvocation(data []byte) (*Invocation, error) {
	var inv Invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Ack is the primary's response to a handoff. OK means the invocation was
// received and the secondary may exit.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Encode serializes an Ack to JSON bytes (without trailing newline).
func (a *Ack) Encode() ([]byte, error) {
	return json.Marshal(a)
}

// DecodeAck deserializes an Ack from JSON bytes.
func DecodeAck(data []byte) (*Ack, error) {
	var ack Ack
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
