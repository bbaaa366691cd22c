package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tackernao0522/demochat-client/internal/client/chat"
	"github.com/tackernao0522/demochat-client/internal/client/session"
	"github.com/tackernao0522/demochat-client/internal/common"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

type ctxKey int

const (
	epochKey ctxKey = iota
	skipRefreshKey
)

// RESTClient implements Client over HTTP with resty.
type RESTClient struct {
	http  *resty.Client
	store SessionStore
	log   logging.Logger
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient returns a client for the API at baseURL. store may be nil,
// in which case no credential is attached and nothing is refreshed.
func NewRESTClient(baseURL string, store SessionStore, log logging.Logger, timeout time.Duration) *RESTClient {
	if log == nil {
		log = logging.Nop()
	}
	c := &RESTClient{store: store, log: log}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log: log}).
		OnBeforeRequest(c.attachCredential).
		OnAfterResponse(c.refreshCredential)
	if timeout > 0 {
		c.http.SetTimeout(timeout)
	}
	return c
}

type authBody struct {
	Data *session.User `json:"data"`
}

func (c *RESTClient) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	var body authBody
	req := c.http.R().
		SetContext(withoutRefresh(ctx)).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&body)

	resp, err := c.send(ctx, req, http.MethodPost, "/auth/sign_in")
	if err != nil {
		return nil, err
	}
	return &AuthResult{Credential: credentialFromHeader(resp.Header()), User: body.Data}, nil
}

func (c *RESTClient) SignUp(ctx context.Context, email, password, name string) (*AuthResult, error) {
	var body authBody
	req := c.http.R().
		SetContext(withoutRefresh(ctx)).
		SetBody(map[string]string{"email": email, "password": password, "name": name}).
		SetResult(&body)

	resp, err := c.send(ctx, req, http.MethodPost, "/auth")
	if err != nil {
		return nil, err
	}
	return &AuthResult{Credential: credentialFromHeader(resp.Header()), User: body.Data}, nil
}

// SignOut revokes cred on the server. The credential is passed explicitly
// so that it is the one being revoked even if the store changes meanwhile.
func (c *RESTClient) SignOut(ctx context.Context, cred session.Credential) error {
	req := c.http.R().
		SetContext(withoutRefresh(ctx)).
		SetHeader(common.HeaderAccessToken, cred.Token).
		SetHeader(common.HeaderClient, cred.Client).
		SetHeader(common.HeaderUID, cred.UID)

	_, err := c.send(ctx, req, http.MethodDelete, "/auth/sign_out")
	return err
}

func (c *RESTClient) ValidateToken(ctx context.Context) (*session.User, error) {
	var body authBody
	req := c.http.R().SetContext(ctx).SetResult(&body)

	if _, err := c.send(ctx, req, http.MethodGet, "/auth/validate_token"); err != nil {
		return nil, err
	}
	return body.Data, nil
}

func (c *RESTClient) Messages(ctx context.Context) ([]chat.Message, error) {
	resp, err := c.send(ctx, c.http.R().SetContext(ctx), http.MethodGet, "/messages")
	if err != nil {
		return nil, err
	}
	return chat.DecodeList(resp.Body())
}

func (c *RESTClient) send(ctx context.Context, req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn(ctx, "api request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Messages: parseErrors(resp.Body())}
		c.log.Debug(ctx, "api error response", "method", method, "path", path, "status", apiErr.Status)
		return resp, apiErr
	}
	return resp, nil
}

// attachCredential runs before every request. It records the session epoch
// the request was issued under and, unless the caller set auth headers
// itself, attaches the stored credential when it is complete.
func (c *RESTClient) attachCredential(_ *resty.Client, r *resty.Request) error {
	if c.store == nil {
		return nil
	}
	ctx := r.Context()
	r.SetContext(context.WithValue(ctx, epochKey, c.store.Epoch()))

	if r.Header.Get(common.HeaderAccessToken) != "" {
		return nil
	}
	cred, ok := c.store.Credential(ctx)
	if !ok {
		return nil
	}
	r.SetHeader(common.HeaderAccessToken, cred.Token)
	r.SetHeader(common.HeaderClient, cred.Client)
	r.SetHeader(common.HeaderUID, cred.UID)
	return nil
}

// refreshCredential pushes fresh auth headers into the store.
func (c *RESTClient) refreshCredential(_ *resty.Client, resp *resty.Response) error {
	if c.store == nil {
		return nil
	}
	ctx := resp.Request.Context()
	if skip, _ := ctx.Value(skipRefreshKey).(bool); skip {
		return nil
	}
	epoch, ok := ctx.Value(epochKey).(uint64)
	if !ok {
		return nil
	}
	cred := credentialFromHeader(resp.Header())
	if !cred.Complete() {
		return nil
	}
	if !c.store.Refresh(ctx, epoch, cred) {
		c.log.Debug(ctx, "auth header refresh not applied", "url", resp.Request.URL)
	}
	return nil
}

func withoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipRefreshKey, true)
}

func credentialFromHeader(h http.Header) session.Credential {
	return session.Credential{
		Token:  h.Get(common.HeaderAccessToken),
		Client: h.Get(common.HeaderClient),
		UID:    h.Get(common.HeaderUID),
		Expiry: h.Get(common.HeaderExpiry),
	}
}

type restyLogger struct {
	log logging.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(context.Background(), "resty: "+strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(context.Background(), "resty: "+strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(context.Background(), "resty: "+strings.TrimSpace(fmt.Sprintf(format, v...)))
}
