package gateway

import (
	"context"
	"net/http"

	"github.com/tackernao0522/demochat-client/internal/client/client"
	"github.com/tackernao0522/demochat-client/internal/client/guard"
	"github.com/tackernao0522/demochat-client/internal/client/session"
)

type ctxKey int

const storeKey ctxKey = iota

// withSession gives every request a session store over its cookies.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storage := session.NewCookieStorage(w, r, session.CookieOptions{Production: s.cfg.IsProduction()})
		store := session.NewStore(storage, s.storeOptions()...)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), storeKey, store)))
	})
}

func (s *Server) storeOptions() []session.Option {
	opts := []session.Option{session.WithLogger(s.log.With("module", "session"))}
	if s.cipher != nil {
		opts = append(opts, session.WithCipher(s.cipher))
	}
	return opts
}

func storeFrom(r *http.Request) *session.Store {
	store, _ := r.Context().Value(storeKey).(*session.Store)
	return store
}

func (s *Server) guardFor(r *http.Request) *guard.Guard {
	store := storeFrom(r)
	if store == nil {
		return guard.New(nil)
	}
	return guard.New(store, guard.WithLogger(s.log))
}

func (s *Server) apiClient(store *session.Store) *client.RESTClient {
	return client.NewRESTClient(s.cfg.APIURL, store, s.log.With("module", "api"), s.cfg.RequestTimeout)
}
