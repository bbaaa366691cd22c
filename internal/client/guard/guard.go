// Package guard decides where navigation should land given the session.
package guard

import (
	"context"
	"net/http"

	"github.com/tackernao0522/demochat-client/internal/logging"
)

type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

var (
	Entry    = Route{Name: "index", Path: "/"}
	Chatroom = Route{Name: "chatroom", Path: "/chatroom", RequiresAuth: true}
)

// Authenticator is the read side of the session store. Available reports
// whether client storage exists in this context; without it the guard
// checks nothing.
type Authenticator interface {
	Available() bool
	IsAuthenticated(ctx context.Context) bool
}

type Guard struct {
	auth  Authenticator
	entry Route
	home  Route
	log   logging.Logger
}

type Option func(*Guard)

func WithLogger(l logging.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// WithRoutes overrides the entry route and the authenticated landing route.
func WithRoutes(entry, home Route) Option {
	return func(g *Guard) {
		g.entry = entry
		g.home = home
	}
}

// New returns a guard reading auth. A nil auth makes every Resolve a no-op.
func New(auth Authenticator, opts ...Option) *Guard {
	g := &Guard{auth: auth, entry: Entry, home: Chatroom, log: logging.Nop()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Resolve returns the route navigation to `to` should land on and whether
// that differs from `to`. It never mutates the session.
func (g *Guard) Resolve(ctx context.Context, to Route) (Route, bool) {
	if g == nil || g.auth == nil || !g.auth.Available() {
		return to, false
	}

	switch {
	case to.RequiresAuth && !g.auth.IsAuthenticated(ctx):
		g.log.Debug(ctx, "guard redirect", "from", to.Path, "to", g.entry.Path)
		return g.entry, true
	case to.Path == g.entry.Path && g.auth.IsAuthenticated(ctx):
		g.log.Debug(ctx, "guard redirect", "from", to.Path, "to", g.home.Path)
		return g.home, true
	}
	return to, false
}

// Middleware guards GET requests for the given routes. guardFor builds the
// guard for a request, typically over that request's cookies. Redirects use
// 303 See Other.
func Middleware(guardFor func(*http.Request) *Guard, routes ...Route) func(http.Handler) http.Handler {
	byPath := make(map[string]Route, len(routes))
	for _, r := range routes {
		byPath[r.Path] = r
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, ok := byPath[r.URL.Path]
			if !ok || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
				next.ServeHTTP(w, r)
				return
			}
			if target, redirected := guardFor(r).Resolve(r.Context(), route); redirected {
				http.Redirect(w, r, target.Path, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
