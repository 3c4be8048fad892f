// Package events provides the in-process event bus that carries activation
// traffic from OS-facing producers (scheme callbacks, secondary-instance
// handoffs) to the deep-link bridge.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/statisfy/statisfy/internal/constants"
)

// EventType defines the types of events that can be published
type EventType string

const (
	// EventActivation - the OS activated the application via its URI scheme
	EventActivation EventType = "activation"

	// EventHandoff - a secondary instance forwarded its launch invocation
	EventHandoff EventType = "handoff"

	// EventLog - diagnostic log line for the activity surface
	EventLog EventType = "log"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// ActivationEvent represents a single deep-link activation. A scheme-handled
// launch can carry multiple URLs; their order is preserved.
type ActivationEvent struct {
	BaseEvent
	URLs   []string
	Source string // "scheme" (OS callback) or "cold-start" (own argv)
}

// HandoffEvent carries the launch invocation forwarded by a secondary
// instance before it exited.
type HandoffEvent struct {
	BaseEvent
	Args       []string
	WorkingDir string
	PID        int
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Error   error
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of events dropped due to full buffers
}

// NewEventBus creates a new event bus with the specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events. A single all-events
// channel is the ordering point: events arrive in publish order.
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. Non-blocking: a subscriber with
// a full buffer loses the event rather than stalling the producer, which may
// be an OS-managed callback thread.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishActivation is a convenience method for publishing activation events
func (eb *EventBus) PublishActivation(urls []string, source string) {
	eb.Publish(&ActivationEvent{
		BaseEvent: BaseEvent{
			EventType: EventActivation,
			Time:      time.Now(),
		},
		URLs:   urls,
		Source: source,
	})
}

// PublishHandoff is a convenience method for publishing handoff events
func (eb *EventBus) PublishHandoff(args []string, workingDir string, pid int) {
	eb.Publish(&HandoffEvent{
		BaseEvent: BaseEvent{
			EventType: EventHandoff,
			Time:      time.Now(),
		},
		Args:       args,
		WorkingDir: workingDir,
		PID:        pid,
	})
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{
			EventType: EventLog,
			Time:      time.Now(),
		},
		Level:   level,
		Message: message,
		Error:   err,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types,
// including the all-events list.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to
// full buffers. Useful for verifying the accepted-loss policy stays rare.
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
