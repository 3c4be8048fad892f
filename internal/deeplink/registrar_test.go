package deeplink

import (
	"errors"
	"testing"
)

// countingBackend records Register calls and returns a configurable error.
type countingBackend struct {
	calls int
	err   error
}

func (b *countingBackend) Register(string) error {
	b.calls++
	return b.err
}

func TestRegistrar_RegisterIsIdempotent(t *testing.T) {
	backend := &countingBackend{}
	r := newRegistrarWithBackend("statisfy", backend, nil)

	if err := r.Register(); err != nil {
		t.Fatalf("First register failed: %v", err)
	}
	if err := r.Register(); err != nil {
		t.Fatalf("Second register failed: %v", err)
	}

	if backend.calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", backend.calls)
	}
}

func TestRegistrar_RetriesAfterFailure(t *testing.T) {
	backend := &countingBackend{err: ErrPermissionDenied}
	r := newRegistrarWithBackend("statisfy", backend, nil)

	if err := r.Register(); err == nil {
		t.Fatal("Expected first register to fail")
	}

	// A failed attempt must not latch the registered flag.
	backend.err = nil
	if err := r.Register(); err != nil {
		t.Fatalf("Register after recovery failed: %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("Expected 2 backend calls, got %d", backend.calls)
	}
}

func TestRegistrar_ErrorClassificationSurvivesWrapping(t *testing.T) {
	tests := []struct {
		name     string
		backend  error
		sentinel error
	}{
		{"permission denied", ErrPermissionDenied, ErrPermissionDenied},
		{"scheme conflict", ErrSchemeConflict, ErrSchemeConflict},
		{"unsupported platform", ErrUnsupportedPlatform, ErrUnsupportedPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistrarWithBackend("statisfy", &countingBackend{err: tt.backend}, nil)
			err := r.Register()
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected errors.Is(err, %v), got %v", tt.sentinel, err)
			}
		})
	}
}

func TestRegistrar_DeliverInvokesListener(t *testing.T) {
	r := newRegistrarWithBackend("statisfy", &countingBackend{}, nil)

	var received []string
	r.OnActivate(func(urls []string) {
		received = append(received, urls...)
	})

	r.Deliver([]string{"statisfy://open/1", "statisfy://open/2"})

	if len(received) != 2 {
		t.Fatalf("Expected 2 URLs delivered, got %d", len(received))
	}
	if received[0] != "statisfy://open/1" || received[1] != "statisfy://open/2" {
		t.Errorf("Unexpected URLs: %v", received)
	}
}

func TestRegistrar_DeliverWithoutListenerIsSafe(t *testing.T) {
	r := newRegistrarWithBackend("statisfy", &countingBackend{}, nil)

	// Must not panic; the activation is accepted loss.
	r.Deliver([]string{"statisfy://open/1"})
	r.Deliver(nil)
}

func TestIsSchemeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"statisfy://open/42", true},
		{"STATISFY://open/42", true},
		{"statisfy:", true},
		{"https://example.com", false},
		{"notaurl", false},
		{"--flag", false},
		{"", false},
		{"statisfy://%zz", false},
	}

	for _, tt := range tests {
		if got := IsSchemeURL(tt.url, "statisfy"); got != tt.want {
			t.Errorf("IsSchemeURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
