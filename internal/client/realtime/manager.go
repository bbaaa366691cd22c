package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/tackernao0522/demochat-client/internal/logging"
)

// ActionReceive is the channel action that publishes a chat message.
const ActionReceive = "receive"

var ErrClosed = errors.New("realtime: manager closed")

// Manager owns one logical channel subscription. It is safe for concurrent
// use; listeners are called without the internal lock held.
type Manager struct {
	mu sync.Mutex

	transport Transport
	policy    Policy
	sched     Scheduler
	log       logging.Logger
	onReceive func(json.RawMessage)
	onStatus  func(Status)

	ctx        context.Context
	state      State
	retryCount int
	offline    bool
	closed     bool
	outbox     []OutboundMessage
	gen        uint64
	timer      Timer
}

type ManagerOption func(*Manager)

func WithScheduler(s Scheduler) ManagerOption {
	return func(m *Manager) {
		if s != nil {
			m.sched = s
		}
	}
}

func WithManagerLogger(l logging.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithReceiver sets the callback for inbound channel messages.
func WithReceiver(f func(json.RawMessage)) ManagerOption {
	return func(m *Manager) { m.onReceive = f }
}

// WithStatusListener is called after every state change.
func WithStatusListener(f func(Status)) ManagerOption {
	return func(m *Manager) { m.onStatus = f }
}

func NewManager(t Transport, p Policy, opts ...ManagerOption) *Manager {
	m := &Manager{
		transport: t,
		policy:    p,
		sched:     realScheduler{},
		log:       logging.Nop(),
		ctx:       context.Background(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Connect starts a connection unless one is already live or underway. It
// also resets the reconnect bound, so it is the way back from Offline.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		return nil
	}
	m.stopTimerLocked()
	m.ctx = context.WithoutCancel(ctx)
	m.closed = false
	m.offline = false
	m.retryCount = 0
	gen := m.beginLocked()
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
	return m.open(gen)
}

// Send transmits msg when connected and otherwise queues it. It never fails
// for being offline; a message whose transmit fails is queued too.
func (m *Manager) Send(ctx context.Context, msg OutboundMessage) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state == Connected && m.drainLocked(ctx) == nil {
		err := m.transport.Perform(ctx, ActionReceive, msg)
		if err == nil {
			m.mu.Unlock()
			return nil
		}
		m.log.Warn(ctx, "send failed, message queued", "id", msg.ID, "error", err)
	}
	m.outbox = append(m.outbox, msg)
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
	return nil
}

// Close drops the subscription and cancels any pending reconnect. Queued
// messages are kept for a later Connect.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.stopTimerLocked()
	m.gen++
	m.state = Disconnected
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
	return m.transport.Close()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// Pending returns a copy of the outbox.
func (m *Manager) Pending() []OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OutboundMessage(nil), m.outbox...)
}

func (m *Manager) beginLocked() uint64 {
	m.gen++
	m.state = Connecting
	return m.gen
}

func (m *Manager) open(gen uint64) error {
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()

	if err := m.transport.Open(ctx, &genHandler{m: m, gen: gen}); err != nil {
		m.log.Warn(ctx, "channel open failed", "error", err)
		m.disconnected(gen, err)
		return err
	}
	return nil
}

func (m *Manager) connected(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != Connecting {
		m.mu.Unlock()
		return
	}
	m.state = Connected
	m.retryCount = 0
	m.offline = false
	m.log.Info(m.ctx, "channel connected", "pending", len(m.outbox))
	_ = m.drainLocked(m.ctx)
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
}

func (m *Manager) disconnected(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.gen || m.state == Disconnected {
		m.mu.Unlock()
		return
	}
	m.state = Disconnected
	m.retryCount++

	var de *DisconnectError
	switch {
	case m.closed:
	case errors.As(err, &de) && !de.Reconnect:
		m.offline = true
		m.log.Warn(m.ctx, "channel closed by server", "reason", de.Reason)
	case m.retryCount >= m.policy.MaxAttempts:
		m.offline = true
		m.log.Warn(m.ctx, "channel offline, reconnect attempts exhausted", "attempts", m.retryCount, "error", err)
	default:
		delay := m.policy.Backoff(m.retryCount)
		m.log.Info(m.ctx, "channel disconnected, reconnect scheduled", "attempt", m.retryCount, "delay", delay, "error", err)
		m.timer = m.sched.AfterFunc(delay, func() { m.reconnect(gen) })
	}
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
}

func (m *Manager) reconnect(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.closed || m.state != Disconnected {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	next := m.beginLocked()
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
	_ = m.open(next)
}

func (m *Manager) received(gen uint64, data json.RawMessage) {
	m.mu.Lock()
	current := gen == m.gen
	f := m.onReceive
	m.mu.Unlock()

	if current && f != nil {
		f(data)
	}
}

// drainLocked sends the outbox in order. On the first failure the unsent
// remainder stays queued.
func (m *Manager) drainLocked(ctx context.Context) error {
	for len(m.outbox) > 0 {
		msg := m.outbox[0]
		if err := m.transport.Perform(ctx, ActionReceive, msg); err != nil {
			m.log.Warn(ctx, "outbox drain interrupted", "remaining", len(m.outbox), "error", err)
			return err
		}
		m.outbox = m.outbox[1:]
	}
	m.outbox = nil
	return nil
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) statusLocked() Status {
	return Status{
		State:      m.state,
		RetryCount: m.retryCount,
		Pending:    len(m.outbox),
		Offline:    m.offline,
	}
}

func (m *Manager) notify(st Status) {
	if m.onStatus != nil {
		m.onStatus(st)
	}
}

// genHandler ties transport events to the connection they belong to.
type genHandler struct {
	m   *Manager
	gen uint64
}

func (h *genHandler) Connected()                    { h.m.connected(h.gen) }
func (h *genHandler) Disconnected(err error)        { h.m.disconnected(h.gen, err) }
func (h *genHandler) Received(data json.RawMessage) { h.m.received(h.gen, data) }
