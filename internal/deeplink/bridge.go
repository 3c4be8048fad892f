package deeplink

import (
	"fmt"
	"sync"

	"github.com/statisfy/statisfy/internal/constants"
	"github.com/statisfy/statisfy/internal/events"
	"github.com/statisfy/statisfy/internal/logging"
)

// AppHandle is the application's event-publishing surface. AppBootstrap owns
// the concrete handle and lends it to the bridge for the process lifetime.
// Emit must be safe to call from any goroutine; with nothing subscribed on
// the frontend it is a silent no-op.
type AppHandle interface {
	Emit(name string, payload interface{})
}

// Bridge normalizes both activation sources, OS scheme callbacks and
// forwarded secondary-instance invocations, into a single ordered stream of
// deep-link events published on the AppHandle.
//
// The bus subscription is taken at construction, before the UI exists: the
// guard may ack a handoff the moment it holds the lock, and an acked
// invocation must not be lost while the frontend is still coming up. Events
// arriving before Start sit in the subscription buffer and drain in order
// once the handle is attached.
//
// A bridge is one-shot: once stopped it cannot be restarted.
type Bridge struct {
	bus    *events.EventBus
	scheme string
	logger *logging.Logger

	handle       AppHandle
	subscription <-chan events.Event

	stopC   chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewBridge creates a bridge for the given scheme.
func NewBridge(bus *events.EventBus, scheme string, logger *logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Bridge{
		bus:          bus,
		scheme:       scheme,
		logger:       logger,
		subscription: bus.SubscribeAll(),
		stopC:        make(chan struct{}),
	}
}

// Start begins forwarding events onto the handle. Double starts are ignored.
func (b *Bridge) Start(handle AppHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		b.logger.Warn().Msg("Deep-link bridge already started, ignoring duplicate Start()")
		return nil
	}
	if handle == nil {
		return fmt.Errorf("deep-link bridge: nil app handle")
	}
	if b.subscription == nil {
		return fmt.Errorf("deep-link bridge: event bus subscription unavailable")
	}

	b.handle = handle
	b.started = true
	b.wg.Add(1)
	go b.forwardLoop()

	b.logger.Debug().Str("scheme", b.scheme).Msg("Deep-link bridge started")
	return nil
}

// Stop stops forwarding events and drops the bus subscription. Safe to call
// more than once; a stopped bridge stays stopped.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return
	}
	b.started = false
	sub := b.subscription
	b.mu.Unlock()

	close(b.stopC)
	b.wg.Wait()
	b.bus.UnsubscribeAll(sub)

	b.logger.Debug().Msg("Deep-link bridge stopped")
}

// forwardLoop is the single consumer of the bus subscription and therefore
// the ordering point: URLs are published in arrival order.
func (b *Bridge) forwardLoop() {
	defer b.wg.Done()

	for {
		select {
		case event, ok := <-b.subscription:
			if !ok {
				return
			}
			b.forwardEvent(event)

		case <-b.stopC:
			return
		}
	}
}

// logPayload is the wire form of a LogEvent shown in the frontend
// diagnostics panel.
type logPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (b *Bridge) forwardEvent(event events.Event) {
	switch e := event.(type) {
	case *events.ActivationEvent:
		b.publishURLs(e.URLs, e.Source)

	case *events.LogEvent:
		payload := logPayload{Level: e.Level.String(), Message: e.Message}
		if e.Error != nil {
			payload.Error = e.Error.Error()
		}
		b.handle.Emit(constants.LogEventName, payload)

	case *events.HandoffEvent:
		// An argument is a deep link iff it is a well-formed URL of the
		// registered scheme. Flags and stray text are not.
		urls := FilterSchemeURLs(e.Args, b.scheme)
		if len(urls) == 0 {
			b.logger.Debug().Int("pid", e.PID).Msg("Forwarded invocation carried no deep links")
			return
		}
		b.publishURLs(urls, "handoff")
	}
}

// publishURLs emits one event per URL, in order, under the fixed event name.
// Consumers cannot tell a cold activation from a forwarded one; the source
// only appears in logs. Malformed URLs are dropped individually without
// failing the rest of the batch.
func (b *Bridge) publishURLs(urls []string, source string) {
	for _, u := range urls {
		if !IsSchemeURL(u, b.scheme) {
			b.logger.Warn().Str("url", u).Str("source", source).Msg("Dropping malformed or foreign-scheme URL")
			continue
		}
		b.handle.Emit(constants.DeepLinkEventName, u)
		b.logger.Debug().Str("url", u).Str("source", source).Msg("Deep link published")
	}
}
