package services

import (
	"context"

	"github.com/tackernao0522/demochat-client/internal/client/session"
)

// SessionStore is the part of session.Store the services use.
type SessionStore interface {
	Epoch() uint64
	Save(ctx context.Context, cred session.Credential, user *session.User)
	Clear(ctx context.Context)
	DropIfExpired(ctx context.Context) bool
	Credential(ctx context.Context) (session.Credential, bool)
	User(ctx context.Context) *session.User
	IsAuthenticated(ctx context.Context) bool
}

var _ SessionStore = (*session.Store)(nil)
