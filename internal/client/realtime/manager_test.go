package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu       sync.Mutex
	handlers []Handler
	openErr  error
	// failOn makes the n-th Perform call (1-based) fail; 0 never fails.
	failOn  int
	calls   int
	sent    []OutboundMessage
	closed  int
	actions []string
}

func (f *fakeTransport) Open(_ context.Context, h Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.handlers = append(f.handlers, h)
	return nil
}

func (f *fakeTransport) Perform(_ context.Context, action string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return errors.New("write: broken pipe")
	}
	f.actions = append(f.actions, action)
	f.sent = append(f.sent, data.(OutboundMessage))
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeTransport) handler(i int) Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[i]
}

func (f *fakeTransport) opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *fakeTransport) contents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Content)
	}
	return out
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeScheduler is a virtual clock: timers run only when fired.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the oldest live timer and reports its delay.
func (s *fakeScheduler) fire(t *testing.T) time.Duration {
	t.Helper()
	s.mu.Lock()
	var next *fakeTimer
	for len(s.timers) > 0 {
		cand := s.timers[0]
		s.timers = s.timers[1:]
		if !cand.stopped {
			next = cand
			break
		}
	}
	s.mu.Unlock()
	require.NotNil(t, next, "no live timer to fire")
	next.stopped = true
	next.f()
	return next.d
}

func (s *fakeScheduler) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func msg(content string) OutboundMessage {
	return NewOutboundMessage(content, "ann@example.com", time.UnixMilli(1_700_000_000_000))
}

func newTestManager(tr *fakeTransport, sched *fakeScheduler, maxAttempts int, opts ...ManagerOption) *Manager {
	opts = append([]ManagerOption{WithScheduler(sched)}, opts...)
	return NewManager(tr, NewPolicy(maxAttempts, time.Second, 30*time.Second), opts...)
}

func TestSend_WhileDisconnectedQueues(t *testing.T) {
	tr := &fakeTransport{}
	m := newTestManager(tr, &fakeScheduler{}, 5)
	ctx := context.Background()

	require.NoError(t, m.Send(ctx, msg("a")))
	require.NoError(t, m.Send(ctx, msg("b")))

	assert.Empty(t, tr.contents(), "nothing is transmitted while disconnected")
	assert.Equal(t, 2, m.Status().Pending)

	require.NoError(t, m.Connect(ctx))
	assert.Equal(t, Connecting, m.State())
	require.NoError(t, m.Send(ctx, msg("c")))
	assert.Empty(t, tr.contents(), "connecting is not connected")

	tr.handler(0).Connected()

	assert.Equal(t, Connected, m.State())
	assert.Equal(t, []string{"a", "b", "c"}, tr.contents())
	assert.Equal(t, []string{ActionReceive, ActionReceive, ActionReceive}, tr.actions)
	assert.Empty(t, m.Pending())

	require.NoError(t, m.Send(ctx, msg("d")))
	assert.Equal(t, []string{"a", "b", "c", "d"}, tr.contents())
}

func TestScenario_TwoDisconnectsThenDrain(t *testing.T) {
	tr := &fakeTransport{}
	sched := &fakeScheduler{}
	m := newTestManager(tr, sched, 5)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	require.NoError(t, m.Send(ctx, msg("first")))
	require.NoError(t, m.Send(ctx, msg("second")))

	tr.handler(0).Disconnected(errors.New("network lost"))
	assert.Equal(t, 1, m.Status().RetryCount)
	assert.Equal(t, time.Second, sched.fire(t))

	tr.handler(1).Disconnected(errors.New("server restart"))
	assert.Equal(t, 2, m.Status().RetryCount)
	assert.Equal(t, 2*time.Second, sched.fire(t))

	tr.handler(2).Connected()

	assert.Equal(t, []string{"first", "second"}, tr.contents())
	st := m.Status()
	assert.Equal(t, Status{State: Connected}, st)
}

func TestReconnect_IsBounded(t *testing.T) {
	tr := &fakeTransport{}
	sched := &fakeScheduler{}
	var statuses []Status
	m := newTestManager(tr, sched, 3, WithStatusListener(func(s Status) { statuses = append(statuses, s) }))

	require.NoError(t, m.Connect(context.Background()))
	tr.handler(0).Disconnected(nil)
	sched.fire(t)
	tr.handler(1).Disconnected(nil)
	sched.fire(t)
	tr.handler(2).Disconnected(nil)

	assert.Equal(t, 0, sched.live(), "no reconnect after the bound")
	assert.Equal(t, 3, tr.opens())
	st := m.Status()
	assert.True(t, st.Offline)
	assert.Equal(t, Disconnected, st.State)
	assert.Equal(t, 3, st.RetryCount)
	require.NotEmpty(t, statuses)
	assert.True(t, statuses[len(statuses)-1].Offline)

	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.Status().Offline, "manual connect leaves offline")
	assert.Equal(t, 0, m.Status().RetryCount)
	assert.Equal(t, 4, tr.opens())
}

func TestStaleCallbacksIgnored(t *testing.T) {
	tr := &fakeTransport{}
	sched := &fakeScheduler{}
	var received []string
	m := newTestManager(tr, sched, 5, WithReceiver(func(raw json.RawMessage) { received = append(received, string(raw)) }))

	require.NoError(t, m.Connect(context.Background()))
	old := tr.handler(0)
	old.Disconnected(nil)
	sched.fire(t)

	old.Connected()
	old.Received(json.RawMessage(`{"id":1}`))
	old.Disconnected(nil)
	assert.Equal(t, Connecting, m.State())
	assert.Equal(t, 1, m.Status().RetryCount)
	assert.Empty(t, received)

	tr.handler(1).Connected()
	tr.handler(1).Received(json.RawMessage(`{"id":2}`))
	assert.Equal(t, []string{`{"id":2}`}, received)
}

func TestDrainFailureKeepsRemainder(t *testing.T) {
	tr := &fakeTransport{failOn: 2}
	m := newTestManager(tr, &fakeScheduler{}, 5)
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c"} {
		require.NoError(t, m.Send(ctx, msg(c)))
	}
	require.NoError(t, m.Connect(ctx))
	tr.handler(0).Connected()

	assert.Equal(t, []string{"a"}, tr.contents())
	pending := m.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].Content)
	assert.Equal(t, "c", pending[1].Content)

	require.NoError(t, m.Send(ctx, msg("d")))
	assert.Equal(t, []string{"a", "b", "c", "d"}, tr.contents(), "queued messages go first")
	assert.Empty(t, m.Pending())
}

func TestSendFailureWhileConnectedQueues(t *testing.T) {
	tr := &fakeTransport{failOn: 1}
	m := newTestManager(tr, &fakeScheduler{}, 5)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	tr.handler(0).Connected()

	require.NoError(t, m.Send(ctx, msg("x")))
	assert.Empty(t, tr.contents())
	assert.Equal(t, 1, m.Status().Pending)
}

func TestOpenErrorCountsAsDisconnect(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("dial refused")}
	sched := &fakeScheduler{}
	m := newTestManager(tr, sched, 5)

	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, Disconnected, m.State())
	assert.Equal(t, 1, m.Status().RetryCount)
	assert.Equal(t, 1, sched.live())

	tr.mu.Lock()
	tr.openErr = nil
	tr.mu.Unlock()
	sched.fire(t)
	tr.handler(0).Connected()
	assert.Equal(t, Connected, m.State())
}

func TestServerDisconnectWithoutReconnect(t *testing.T) {
	tr := &fakeTransport{}
	sched := &fakeScheduler{}
	m := newTestManager(tr, sched, 5)

	require.NoError(t, m.Connect(context.Background()))
	tr.handler(0).Connected()
	tr.handler(0).Disconnected(&DisconnectError{Reason: "unauthorized", Reconnect: false})

	assert.True(t, m.Status().Offline)
	assert.Equal(t, 0, sched.live())
}

func TestClose_CancelsReconnect(t *testing.T) {
	tr := &fakeTransport{}
	sched := &fakeScheduler{}
	m := newTestManager(tr, sched, 5)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	tr.handler(0).Disconnected(nil)
	require.Equal(t, 1, sched.live())

	require.NoError(t, m.Close())
	assert.Equal(t, 0, sched.live())
	assert.Equal(t, 1, tr.closed)
	assert.ErrorIs(t, m.Send(ctx, msg("late")), ErrClosed)
}

func TestConnect_IsIdempotentWhileLive(t *testing.T) {
	tr := &fakeTransport{}
	m := newTestManager(tr, &fakeScheduler{}, 5)

	require.NoError(t, m.Connect(context.Background()))
	require.NoError(t, m.Connect(context.Background()))
	tr.handler(0).Connected()
	require.NoError(t, m.Connect(context.Background()))

	assert.Equal(t, 1, tr.opens())
}

func TestOutboundMessage_JSON(t *testing.T) {
	b, err := json.Marshal(msg("hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"hi","email":"ann@example.com","timestamp":1700000000000}`, string(b))
}
