package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tackernao0522/demochat-client/internal/client/session"
	"github.com/tackernao0522/demochat-client/internal/common"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

var (
	ErrNotSubscribed = errors.New("realtime: not subscribed")
	ErrRejected      = errors.New("realtime: subscription rejected")
)

// DisconnectError is a server-initiated disconnect.
type DisconnectError struct {
	Reason    string
	Reconnect bool
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf("realtime: server disconnect: %s", e.Reason)
}

// CredentialSource provides the credential sent with the handshake.
type CredentialSource interface {
	Credential(ctx context.Context) (session.Credential, bool)
}

type CableOptions struct {
	// Channel is the server-side channel class, e.g. "RoomChannel".
	Channel string
	// Origin header for the handshake; derived from the cable URL when empty.
	Origin string
	// StaleAfter closes a connection that has been silent this long. The
	// server pings every 3 seconds.
	StaleAfter   time.Duration
	WriteTimeout time.Duration
	Dialer       *websocket.Dialer
	Logger       logging.Logger
}

// Cable is a Transport for an ActionCable server.
type Cable struct {
	url   string
	creds CredentialSource
	opts  CableOptions
	ident string

	mu   sync.Mutex
	conn *cableConn
}

var _ Transport = (*Cable)(nil)

func NewCable(cableURL string, creds CredentialSource, opts CableOptions) *Cable {
	if opts.Channel == "" {
		opts.Channel = "RoomChannel"
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 6 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	ident, _ := json.Marshal(struct {
		Channel string `json:"channel"`
	}{opts.Channel})

	return &Cable{url: cableURL, creds: creds, opts: opts, ident: string(ident)}
}

func (c *Cable) Open(ctx context.Context, h Handler) error {
	target, header, err := c.handshake(ctx)
	if err != nil {
		return err
	}

	ws, resp, err := c.opts.Dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("realtime: dial %s: %w", c.url, err)
	}

	cc := &cableConn{cable: c, ws: ws, h: h, done: make(chan struct{})}
	c.mu.Lock()
	old := c.conn
	c.conn = cc
	c.mu.Unlock()
	if old != nil {
		old.close()
	}

	go cc.readLoop(ctx)
	return nil
}

func (c *Cable) Perform(ctx context.Context, action string, data any) error {
	c.mu.Lock()
	cc := c.conn
	c.mu.Unlock()
	if cc == nil {
		return ErrNotSubscribed
	}
	return cc.perform(ctx, action, data)
}

func (c *Cable) Close() error {
	c.mu.Lock()
	cc := c.conn
	c.conn = nil
	c.mu.Unlock()
	if cc != nil {
		cc.close()
	}
	return nil
}

func (c *Cable) handshake(ctx context.Context) (string, http.Header, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", nil, fmt.Errorf("realtime: cable url: %w", err)
	}
	header := http.Header{}
	header.Set("Origin", c.origin(u))

	if c.creds != nil {
		if cred, ok := c.creds.Credential(ctx); ok {
			q := u.Query()
			q.Set(common.HeaderAccessToken, cred.Token)
			q.Set(common.HeaderClient, cred.Client)
			q.Set(common.HeaderUID, cred.UID)
			u.RawQuery = q.Encode()
			header.Set(common.HeaderAccessToken, cred.Token)
			header.Set(common.HeaderClient, cred.Client)
			header.Set(common.HeaderUID, cred.UID)
		}
	}
	return u.String(), header, nil
}

func (c *Cable) origin(u *url.URL) string {
	if c.opts.Origin != "" {
		return c.opts.Origin
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}

// frame is a server-to-client ActionCable message.
type frame struct {
	Type       string          `json:"type,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	Message    json.RawMessage `json:"message,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Reconnect  *bool           `json:"reconnect,omitempty"`
}

// command is a client-to-server ActionCable message.
type command struct {
	Command    string `json:"command"`
	Identifier string `json:"identifier"`
	Data       string `json:"data,omitempty"`
}

type cableConn struct {
	cable *Cable
	ws    *websocket.Conn
	h     Handler

	writeMu    sync.Mutex
	subscribed bool

	closeOnce sync.Once
	done      chan struct{}
}

func (cc *cableConn) readLoop(ctx context.Context) {
	log := cc.cable.opts.Logger
	err := cc.read(ctx)

	select {
	case <-cc.done:
		log.Debug(ctx, "cable connection closed locally")
	default:
		cc.close()
	}
	cc.h.Disconnected(err)
}

func (cc *cableConn) read(ctx context.Context) error {
	stale := cc.cable.opts.StaleAfter
	for {
		if err := cc.ws.SetReadDeadline(time.Now().Add(stale)); err != nil {
			return err
		}
		var f frame
		if err := cc.ws.ReadJSON(&f); err != nil {
			return err
		}

		switch f.Type {
		case "welcome":
			if err := cc.write(ctx, command{Command: "subscribe", Identifier: cc.cable.ident}); err != nil {
				return err
			}
		case "ping":
		case "confirm_subscription":
			cc.writeMu.Lock()
			cc.subscribed = true
			cc.writeMu.Unlock()
			cc.h.Connected()
		case "reject_subscription":
			return ErrRejected
		case "disconnect":
			return &DisconnectError{Reason: f.Reason, Reconnect: f.Reconnect == nil || *f.Reconnect}
		case "":
			if f.Identifier == cc.cable.ident && len(f.Message) > 0 {
				cc.h.Received(f.Message)
			}
		default:
			cc.cable.opts.Logger.Debug(ctx, "ignoring cable frame", "type", f.Type)
		}
	}
}

// perform sends {"command":"message"} with data re-encoded as a JSON string
// carrying the action name.
func (cc *cableConn) perform(ctx context.Context, action string, data any) error {
	payload := map[string]any{}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("realtime: encode %s payload: %w", action, err)
		}
		if err := json.Unmarshal(b, &payload); err != nil {
			return fmt.Errorf("realtime: %s payload must be an object: %w", action, err)
		}
	}
	payload["action"] = action
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	cc.writeMu.Lock()
	subscribed := cc.subscribed
	cc.writeMu.Unlock()
	if !subscribed {
		return ErrNotSubscribed
	}
	return cc.write(ctx, command{Command: "message", Identifier: cc.cable.ident, Data: string(b)})
}

func (cc *cableConn) write(ctx context.Context, cmd command) error {
	cc.writeMu.Lock()
	defer cc.writeMu.Unlock()

	deadline := time.Now().Add(cc.cable.opts.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := cc.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := cc.ws.WriteJSON(cmd); err != nil {
		return fmt.Errorf("realtime: write %s: %w", cmd.Command, err)
	}
	return nil
}

func (cc *cableConn) close() {
	cc.closeOnce.Do(func() {
		close(cc.done)
		cc.writeMu.Lock()
		_ = cc.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		cc.writeMu.Unlock()
		_ = cc.ws.Close()
	})
}
