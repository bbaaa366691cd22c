package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tackernao0522/demochat-client/internal/client/client"
	"github.com/tackernao0522/demochat-client/internal/client/session"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

// AuthService defines authentication operations for the UI.
//
// Contract:
//   - Login / Signup: authenticate against the API and replace the stored
//     session with the returned credential and user.
//   - Logout: revoke the credential on the server when there is a complete
//     one, and clear the local session in every case.
//   - Validate: ask the server whether the stored token is still good.
//   - Current / IsAuthenticated: read the local session only.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*session.User, error)
	Signup(ctx context.Context, email, password, name string) (*session.User, error)
	Logout(ctx context.Context) error
	Validate(ctx context.Context) (*session.User, error)
	Current(ctx context.Context) *session.User
	IsAuthenticated(ctx context.Context) bool
}

type authService struct {
	client client.Client
	store  SessionStore
	log    logging.Logger
}

func NewAuthService(c client.Client, store SessionStore, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: c, store: store, log: log.With("module", "auth_service")}
}

func (a *authService) Login(ctx context.Context, email, password string) (*session.User, error) {
	epoch := a.store.Epoch()
	res, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return a.accept(ctx, epoch, res)
}

func (a *authService) Signup(ctx context.Context, email, password, name string) (*session.User, error) {
	epoch := a.store.Epoch()
	res, err := a.client.SignUp(ctx, email, password, name)
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	return a.accept(ctx, epoch, res)
}

// accept stores an auth response unless the session moved since epoch.
func (a *authService) accept(ctx context.Context, epoch uint64, res *client.AuthResult) (*session.User, error) {
	if a.store.Epoch() != epoch {
		a.log.Warn(ctx, "auth response arrived after session change")
		return nil, ErrStaleResponse
	}
	if res == nil || !res.Credential.Complete() {
		return nil, ErrInvalidAuthResponse
	}
	a.store.Save(ctx, res.Credential, res.User)
	a.log.Info(ctx, "signed in", "uid", res.Credential.UID)
	return res.User, nil
}

// Logout signs out on the server and always clears the local session. A
// 401 from the server means the token was already dead and is not an
// error.
func (a *authService) Logout(ctx context.Context) error {
	cred, ok := a.store.Credential(ctx)
	if !ok {
		a.store.Clear(ctx)
		return nil
	}

	err := a.client.SignOut(ctx, cred)
	a.store.Clear(ctx)

	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		a.log.Warn(ctx, "server sign-out failed, local session cleared", "error", err)
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

// Validate checks the stored token with the server. A rejected token clears
// the session and yields ErrNotAuthenticated.
func (a *authService) Validate(ctx context.Context) (*session.User, error) {
	if !a.store.IsAuthenticated(ctx) {
		return nil, ErrNotAuthenticated
	}
	epoch := a.store.Epoch()

	u, err := a.client.ValidateToken(ctx)
	if a.store.Epoch() != epoch {
		return nil, ErrStaleResponse
	}
	if errors.Is(err, client.ErrUnauthorized) {
		a.store.Clear(ctx)
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	if err != nil {
		return nil, fmt.Errorf("validate error: %w", err)
	}

	if cred, ok := a.store.Credential(ctx); ok && u != nil {
		a.store.Save(ctx, cred, u)
	}
	return u, nil
}

func (a *authService) Current(ctx context.Context) *session.User {
	return a.store.User(ctx)
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	return a.store.IsAuthenticated(ctx)
}
