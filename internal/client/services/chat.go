package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tackernao0522/demochat-client/internal/client/chat"
	"github.com/tackernao0522/demochat-client/internal/client/client"
	"github.com/tackernao0522/demochat-client/internal/client/realtime"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

// ChatService runs one chat room: the message list, filled from the API
// and from the channel, and the channel subscription itself.
type ChatService struct {
	client client.Client
	store  SessionStore
	list   *chat.List
	mgr    *realtime.Manager
	log    logging.Logger
	now    func() time.Time
	onMsg  func(m chat.Message, replaced bool)
}

type ChatOption func(*chatOptions)

type chatOptions struct {
	log     logging.Logger
	now     func() time.Time
	manager []realtime.ManagerOption
	onMsg   func(m chat.Message, replaced bool)
}

func WithChatLogger(l logging.Logger) ChatOption {
	return func(o *chatOptions) {
		if l != nil {
			o.log = l
		}
	}
}

func WithChatClock(now func() time.Time) ChatOption {
	return func(o *chatOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithManagerOptions passes options through to the channel manager, e.g. a
// scheduler or a status listener.
func WithManagerOptions(opts ...realtime.ManagerOption) ChatOption {
	return func(o *chatOptions) { o.manager = append(o.manager, opts...) }
}

// WithMessageListener is called for every message that arrives on the
// channel, after it is applied to the list. replaced is true when it
// updated a message already shown.
func WithMessageListener(f func(m chat.Message, replaced bool)) ChatOption {
	return func(o *chatOptions) { o.onMsg = f }
}

func NewChatService(c client.Client, store SessionStore, t realtime.Transport, p realtime.Policy, opts ...ChatOption) *ChatService {
	o := chatOptions{log: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &ChatService{
		client: c,
		store:  store,
		list:   chat.NewList(),
		log:    o.log.With("module", "chat_service"),
		now:    o.now,
		onMsg:  o.onMsg,
	}
	mopts := append([]realtime.ManagerOption{
		realtime.WithManagerLogger(o.log.With("module", "channel")),
		realtime.WithReceiver(s.receive),
	}, o.manager...)
	s.mgr = realtime.NewManager(t, p, mopts...)
	return s
}

// Enter opens the chat room: an expired session is dropped, then the
// message list is fetched and the channel connected. A failed fetch is
// returned but the channel is connected anyway.
func (s *ChatService) Enter(ctx context.Context) error {
	if s.store.DropIfExpired(ctx) || !s.store.IsAuthenticated(ctx) {
		return ErrNotAuthenticated
	}

	fetchErr := s.FetchMessages(ctx)
	if err := s.mgr.Connect(ctx); err != nil {
		s.log.Warn(ctx, "channel connect failed, will retry", "error", err)
	}
	return fetchErr
}

// FetchMessages replaces the list with the server's. The result is dropped
// when the session changed while the request was in flight.
func (s *ChatService) FetchMessages(ctx context.Context) error {
	epoch := s.store.Epoch()
	msgs, err := s.client.Messages(ctx)
	if err != nil {
		return fmt.Errorf("fetch messages error: %w", err)
	}
	if s.store.Epoch() != epoch {
		s.log.Debug(ctx, "message listing discarded, session changed")
		return ErrStaleResponse
	}
	s.list.Replace(msgs, s.currentUserID(ctx))
	return nil
}

// Send publishes content on the channel, or queues it until the channel is
// connected.
func (s *ChatService) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	msg := realtime.NewOutboundMessage(content, s.senderEmail(ctx), s.now())
	return s.mgr.Send(ctx, msg)
}

func (s *ChatService) Messages() []chat.Message { return s.list.Messages() }

func (s *ChatService) Status() realtime.Status { return s.mgr.Status() }

// Reconnect connects again by hand, which also leaves the offline state.
func (s *ChatService) Reconnect(ctx context.Context) error {
	return s.mgr.Connect(ctx)
}

// Leave unsubscribes. Unsent messages stay queued for the next Enter.
func (s *ChatService) Leave() error {
	return s.mgr.Close()
}

func (s *ChatService) receive(raw json.RawMessage) {
	ctx := context.Background()
	m, err := chat.Decode(raw)
	if err != nil {
		s.log.Warn(ctx, "ignoring channel event", "error", err)
		return
	}
	uid := s.currentUserID(ctx)
	replaced := s.list.Apply(m, uid)
	if s.onMsg != nil {
		m.SentByCurrentUser = uid != 0 && m.UserID == uid
		s.onMsg(m, replaced)
	}
}

func (s *ChatService) currentUserID(ctx context.Context) int64 {
	if u := s.store.User(ctx); u != nil {
		return u.ID
	}
	return 0
}

func (s *ChatService) senderEmail(ctx context.Context) string {
	if u := s.store.User(ctx); u != nil && u.Email != "" {
		return u.Email
	}
	cred, _ := s.store.Credential(ctx)
	return cred.UID
}
