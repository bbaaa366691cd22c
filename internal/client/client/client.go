package client

import (
	"context"

	"github.com/tackernao0522/demochat-client/internal/client/chat"
	"github.com/tackernao0522/demochat-client/internal/client/session"
)

//go:generate mockgen -source=client.go -destination=mock/mock_client.go -package=mock

type Client interface {
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignUp(ctx context.Context, email, password, name string) (*AuthResult, error)
	SignOut(ctx context.Context, cred session.Credential) error
	ValidateToken(ctx context.Context) (*session.User, error)
	Messages(ctx context.Context) ([]chat.Message, error)
}

// AuthResult is a successful sign-in or sign-up: the credential from the
// response headers and the user from the body.
type AuthResult struct {
	Credential session.Credential
	User       *session.User
}

// SessionStore is the part of session.Store the client needs.
type SessionStore interface {
	Credential(ctx context.Context) (session.Credential, bool)
	Epoch() uint64
	Refresh(ctx context.Context, epoch uint64, cred session.Credential) bool
}
