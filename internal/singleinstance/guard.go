package singleinstance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/statisfy/statisfy/internal/constants"
	"github.com/statisfy/statisfy/internal/logging"
)

// Role is the outcome of instance arbitration, determined once per process
// lifetime. The caller decides control flow from it: a primary continues
// startup, a secondary terminates after its handoff.
type Role int

const (
	RoleUnknown Role = iota
	RolePrimary
	RoleSecondary
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// ErrPrimaryUnreachable is returned when a secondary cannot deliver its
// invocation to the primary and cannot take over the lock either.
var ErrPrimaryUnreachable = errors.New("primary instance unreachable")

// HandoffFunc is invoked on the primary with each invocation a secondary
// forwarded. It runs on the guard's accept goroutine and must not block;
// publishing to the event bus is the expected body.
type HandoffFunc func(Invocation)

// Guard arbitrates which process is the application's single instance.
//
// Acquire takes an atomic file lock. The winner listens on the handoff
// endpoint and receives invocations from later launches; a loser forwards
// its own invocation and reports RoleSecondary so the caller can exit.
//
// A guard is one-shot: after Release it cannot Acquire again. Create a new
// Guard to re-arbitrate.
type Guard struct {
	lockPath string
	endpoint string
	logger   *logging.Logger

	lock     *flock.Flock
	listener net.Listener

	mu         sync.Mutex
	onHandoff  HandoffFunc
	invocation Invocation
	role       Role
	released   bool

	stopC chan struct{}
	wg    sync.WaitGroup
}

// New creates a guard on the default lock and endpoint paths.
func New(logger *logging.Logger) *Guard {
	return NewWithPaths(LockPath(), Endpoint(), logger)
}

// NewWithPaths creates a guard on custom paths. Used in tests.
func NewWithPaths(lockPath, endpoint string, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Guard{
		lockPath:   lockPath,
		endpoint:   endpoint,
		logger:     logger,
		lock:       flock.New(lockPath),
		invocation: CurrentInvocation(),
		stopC:      make(chan struct{}),
	}
}

// OnHandoff registers the callback invoked with each forwarded invocation.
// Set it before Acquire so no early handoff is missed.
func (g *Guard) OnHandoff(fn HandoffFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onHandoff = fn
}

// SetInvocation overrides the invocation forwarded on the secondary path.
// Used by tests and by the CLI send command.
func (g *Guard) SetInvocation(inv Invocation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invocation = inv
}

// Role returns the role determined by Acquire.
func (g *Guard) Role() Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.role
}

// Acquire performs instance arbitration.
//
// Exactly one of all racing processes wins the file lock and becomes the
// primary; every other process forwards its invocation and resolves to
// RoleSecondary. If the forward fails (primary crashed mid-handoff), the
// loser re-attempts the lock once and takes over when it succeeds — there is
// no retry loop that could produce two primaries.
func (g *Guard) Acquire() (Role, error) {
	if err := os.MkdirAll(filepath.Dir(g.lockPath), 0700); err != nil {
		return RoleUnknown, fmt.Errorf("create lock directory: %w", err)
	}

	locked, err := g.lock.TryLock()
	if err != nil {
		return RoleUnknown, fmt.Errorf("acquire instance lock: %w", err)
	}
	if locked {
		return g.becomePrimary()
	}

	g.mu.Lock()
	inv := g.invocation
	g.mu.Unlock()

	if err := g.forwardWithRetry(inv); err != nil {
		locked, lockErr := g.lock.TryLock()
		if lockErr == nil && locked {
			g.logger.Warn().Err(err).Msg("Handoff failed but lock was free; taking over as primary")
			return g.becomePrimary()
		}
		return RoleUnknown, fmt.Errorf("hand off to primary: %w", err)
	}

	g.mu.Lock()
	g.role = RoleSecondary
	g.mu.Unlock()
	g.logger.Info().Msg("Another instance is running; invocation forwarded")
	return RoleSecondary, nil
}

func (g *Guard) becomePrimary() (Role, error) {
	listener, err := listen(g.endpoint)
	if err != nil {
		g.lock.Unlock()
		return RoleUnknown, fmt.Errorf("listen on handoff endpoint: %w", err)
	}

	g.mu.Lock()
	g.listener = listener
	g.role = RolePrimary
	g.mu.Unlock()

	g.wg.Add(1)
	go g.acceptLoop()

	g.logger.Debug().Str("endpoint", g.endpoint).Msg("Instance lock acquired")
	return RolePrimary, nil
}

// acceptLoop receives handoffs from secondary launches. Connections are
// handled serially so callbacks fire in launch order.
func (g *Guard) acceptLoop() {
	defer g.wg.Done()

	for {
		conn, err := g.listener.Accept()
		if err != nil {
			select {
			case <-g.stopC:
				return
			default:
			}
			g.logger.Warn().Err(err).Msg("Handoff accept error")
			continue
		}

		g.handleConnection(conn)
	}
}

// handleConnection reads one invocation, acknowledges it, and dispatches the
// callback. The ack is written before dispatch so the secondary never waits
// on the primary's event processing.
func (g *Guard) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(constants.HandoffIOTimeout))
	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			g.logger.Warn().Err(err).Msg("Handoff read error")
		}
		return
	}

	inv, err := DecodeInvocation(data)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Handoff decode error")
		g.sendAck(conn, &Ack{OK: false, Error: "invalid invocation format"})
		return
	}

	g.sendAck(conn, &Ack{OK: true})

	g.mu.Lock()
	fn := g.onHandoff
	g.mu.Unlock()
	if fn != nil {
		fn(*inv)
	}
}

func (g *Guard) sendAck(conn net.Conn, ack *Ack) {
	data, err := ack.Encode()
	if err != nil {
		g.logger.Warn().Err(err).Msg("Handoff ack encode error")
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

// forwardWithRetry keeps retrying the handoff while the primary's listener
// may still be coming up. A process that just lost the lock race can reach
// the winner before the winner finishes binding its endpoint.
func (g *Guard) forwardWithRetry(inv Invocation) error {
	deadline := time.Now().Add(constants.HandoffRetryWindow)
	for {
		err := g.Forward(inv)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrPrimaryUnreachable) || time.Now().After(deadline) {
			return err
		}
		time.Sleep(constants.HandoffRetryInterval)
	}
}

// Forward transmits an invocation to the running primary and waits for its
// acknowledgement. Exposed so the CLI send command can inject deep links
// without going through arbitration.
func (g *Guard) Forward(inv Invocation) error {
	conn, err := dial(g.endpoint, constants.HandoffDialTimeout)
	if err != nil {
		return ErrPrimaryUnreachable
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(constants.HandoffIOTimeout))

	data, err := inv.Encode()
	if err != nil {
		return fmt.Errorf("encode invocation: %w", err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return ErrPrimaryUnreachable
	}

	reader := bufio.NewReader(conn)
	ackData, err := reader.ReadBytes('\n')
	if err != nil {
		return ErrPrimaryUnreachable
	}

	ack, err := DecodeAck(ackData)
	if err != nil {
		return fmt.Errorf("decode ack: %w", err)
	}
	if !ack.OK {
		return fmt.Errorf("primary rejected handoff: %s", ack.Error)
	}
	return nil
}

// Release stops the accept loop, drops the lock, and removes the endpoint.
// Only meaningful on the primary; safe to call more than once.
func (g *Guard) Release() {
	g.mu.Lock()
	if g.released || g.role != RolePrimary {
		g.released = true
		g.mu.Unlock()
		return
	}
	g.released = true
	listener := g.listener
	g.mu.Unlock()

	close(g.stopC)
	if listener != nil {
		listener.Close()
	}
	g.wg.Wait()

	g.lock.Unlock()
	cleanupEndpoint(g.endpoint)
}
