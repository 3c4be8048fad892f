package deeplink

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/statisfy/statisfy/internal/constants"
	"github.com/statisfy/statisfy/internal/events"
)

// recordingHandle captures emitted events for assertions.
type recordingHandle struct {
	mu      sync.Mutex
	names   []string
	payload []interface{}
}

func (h *recordingHandle) Emit(name string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.names = append(h.names, name)
	h.payload = append(h.payload, payload)
}

func (h *recordingHandle) emitted() []interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]interface{}, len(h.payload))
	copy(out, h.payload)
	return out
}

func waitForEmissions(t *testing.T, h *recordingHandle, want int) []interface{} {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := h.emitted()
		if len(got) >= want {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timeout: expected %d emissions, got %d", want, len(h.emitted()))
	return nil
}

func startBridge(t *testing.T) (*events.EventBus, *Bridge, *recordingHandle) {
	t.Helper()
	bus := events.NewEventBus(16)
	t.Cleanup(bus.Close)

	bridge := NewBridge(bus, "statisfy", nil)
	handle := &recordingHandle{}
	if err := bridge.Start(handle); err != nil {
		t.Fatalf("Bridge start failed: %v", err)
	}
	t.Cleanup(bridge.Stop)
	return bus, bridge, handle
}

func TestBridge_ActivationPublishesEachURLInOrder(t *testing.T) {
	bus, _, handle := startBridge(t)

	bus.PublishActivation([]string{
		"statisfy://open/1",
		"statisfy://open/2",
		"statisfy://open/3",
	}, "scheme")

	got := waitForEmissions(t, handle, 3)
	if len(got) != 3 {
		t.Fatalf("Expected exactly 3 events, got %d", len(got))
	}
	want := []string{"statisfy://open/1", "statisfy://open/2", "statisfy://open/3"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("Event %d: expected %s, got %v", i, w, got[i])
		}
	}
}

func TestBridge_EmitsUnderFixedEventName(t *testing.T) {
	bus, _, handle := startBridge(t)

	bus.PublishActivation([]string{"statisfy://open/42"}, "scheme")
	waitForEmissions(t, handle, 1)

	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.names[0] != constants.DeepLinkEventName {
		t.Errorf("Expected event name %q, got %q", constants.DeepLinkEventName, handle.names[0])
	}
}

func TestBridge_HandoffFiltersNonURLArguments(t *testing.T) {
	bus, _, handle := startBridge(t)

	bus.PublishHandoff([]string{"--flag", "statisfy://open/42", "notaurl"}, "/tmp", 123)

	got := waitForEmissions(t, handle, 1)

	// Give any stray extra emission a moment to show up, then assert exactly one.
	time.Sleep(50 * time.Millisecond)
	got = handle.emitted()
	if len(got) != 1 {
		t.Fatalf("Expected exactly 1 event, got %d: %v", len(got), got)
	}
	if got[0] != "statisfy://open/42" {
		t.Errorf("Expected statisfy://open/42, got %v", got[0])
	}
}

func TestBridge_HandoffAndActivationShareOnePublishingPath(t *testing.T) {
	bus, _, handle := startBridge(t)

	bus.PublishActivation([]string{"statisfy://a"}, "scheme")
	bus.PublishHandoff([]string{"statisfy", "statisfy://b"}, "", 1)

	got := waitForEmissions(t, handle, 2)
	if got[0] != "statisfy://a" || got[1] != "statisfy://b" {
		t.Errorf("Expected [statisfy://a statisfy://b], got %v", got)
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()
	for i, name := range handle.names {
		if name != constants.DeepLinkEventName {
			t.Errorf("Emission %d used event name %q", i, name)
		}
	}
}

func TestBridge_MalformedURLDroppedWithoutFailingBatch(t *testing.T) {
	bus, _, handle := startBridge(t)

	bus.PublishActivation([]string{
		"statisfy://good/1",
		"http://other-scheme.example",
		"statisfy://good/2",
	}, "scheme")

	got := waitForEmissions(t, handle, 2)
	time.Sleep(50 * time.Millisecond)
	got = handle.emitted()
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d: %v", len(got), got)
	}
	if got[0] != "statisfy://good/1" || got[1] != "statisfy://good/2" {
		t.Errorf("Unexpected events: %v", got)
	}
}

func TestBridge_HandoffWithNoDeepLinksEmitsNothing(t *testing.T) {
	bus, _, handle := startBridge(t)

	bus.PublishHandoff([]string{"statisfy", "--verbose"}, "", 1)

	time.Sleep(100 * time.Millisecond)
	if got := handle.emitted(); len(got) != 0 {
		t.Errorf("Expected no events, got %v", got)
	}
}

func TestBridge_HandoffBeforeStartIsNotLost(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	bridge := NewBridge(bus, "statisfy", nil)

	// A secondary's handoff can be acked the moment the primary holds the
	// lock, before the frontend exists. The URL must survive until Start.
	bus.PublishHandoff([]string{"statisfy", "statisfy://open/42"}, "/tmp", 99)
	bus.PublishActivation([]string{"statisfy://open/43"}, "scheme")

	handle := &recordingHandle{}
	if err := bridge.Start(handle); err != nil {
		t.Fatalf("Bridge start failed: %v", err)
	}
	defer bridge.Stop()

	got := waitForEmissions(t, handle, 2)
	if got[0] != "statisfy://open/42" || got[1] != "statisfy://open/43" {
		t.Errorf("Expected buffered events in publish order, got %v", got)
	}
}

func TestBridge_ForwardsLogEvents(t *testing.T) {
	bus, _, handle := startBridge(t)

	bus.PublishLog(events.ErrorLevel, "registration failed", errors.New("registry locked"))

	waitForEmissions(t, handle, 1)

	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.names[0] != constants.LogEventName {
		t.Fatalf("Expected event name %q, got %q", constants.LogEventName, handle.names[0])
	}
	payload, ok := handle.payload[0].(logPayload)
	if !ok {
		t.Fatalf("Unexpected payload type %T", handle.payload[0])
	}
	if payload.Level != "ERROR" || payload.Message != "registration failed" || payload.Error != "registry locked" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestBridge_DoubleStartIsNoOp(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	bridge := NewBridge(bus, "statisfy", nil)
	handle := &recordingHandle{}
	if err := bridge.Start(handle); err != nil {
		t.Fatalf("First start failed: %v", err)
	}
	defer bridge.Stop()

	if err := bridge.Start(handle); err != nil {
		t.Errorf("Second start should be a no-op, got error: %v", err)
	}

	bus.PublishActivation([]string{"statisfy://once"}, "scheme")
	waitForEmissions(t, handle, 1)
	time.Sleep(50 * time.Millisecond)
	if got := handle.emitted(); len(got) != 1 {
		t.Errorf("Expected exactly 1 event after double start, got %d", len(got))
	}
}

func TestBridge_StartWithNilHandleFails(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	bridge := NewBridge(bus, "statisfy", nil)
	if err := bridge.Start(nil); err == nil {
		t.Error("Expected error starting bridge with nil handle")
	}
}

func TestBridge_StopIsIdempotent(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	bridge := NewBridge(bus, "statisfy", nil)
	if err := bridge.Start(&recordingHandle{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	bridge.Stop()
	bridge.Stop() // must not panic
}

func TestFilterSchemeURLs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "mixed arguments",
			args: []string{"--flag", "statisfy://open/42", "notaurl"},
			want: []string{"statisfy://open/42"},
		},
		{
			name: "foreign scheme excluded",
			args: []string{"https://example.com", "statisfy://x"},
			want: []string{"statisfy://x"},
		},
		{
			name: "order preserved",
			args: []string{"statisfy://b", "statisfy://a"},
			want: []string{"statisfy://b", "statisfy://a"},
		},
		{
			name: "case-insensitive scheme",
			args: []string{"STATISFY://caps"},
			want: []string{"STATISFY://caps"},
		},
		{
			name: "nothing matches",
			args: []string{"statisfy", "--gui"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSchemeURLs(tt.args, "statisfy")
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Index %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}
