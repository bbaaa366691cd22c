package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tackernao0522/demochat-client/internal/client/session"
)

type fakeAuth struct {
	available bool
	authed    bool
	calls     int
}

func (f *fakeAuth) Available() bool { return f.available }

func (f *fakeAuth) IsAuthenticated(context.Context) bool {
	f.calls++
	return f.authed
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		authed     bool
		to         Route
		want       Route
		redirected bool
	}{
		{"anonymous to chatroom", false, Chatroom, Entry, true},
		{"anonymous to entry", false, Entry, Entry, false},
		{"authenticated to entry", true, Entry, Chatroom, true},
		{"authenticated to chatroom", true, Chatroom, Chatroom, false},
		{"anonymous to public page", false, Route{Name: "about", Path: "/about"}, Route{Name: "about", Path: "/about"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&fakeAuth{available: true, authed: tt.authed})
			got, redirected := g.Resolve(context.Background(), tt.to)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.redirected, redirected)
		})
	}
}

func TestResolve_NoClientStorageIsNoop(t *testing.T) {
	auth := &fakeAuth{available: false}
	g := New(auth)

	got, redirected := g.Resolve(context.Background(), Chatroom)
	assert.Equal(t, Chatroom, got)
	assert.False(t, redirected)
	assert.Zero(t, auth.calls, "storage is never consulted")

	got, redirected = New(nil).Resolve(context.Background(), Chatroom)
	assert.Equal(t, Chatroom, got)
	assert.False(t, redirected)
}

func TestResolve_DoesNotTouchSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(session.NewMemoryStorage())
	store.Save(ctx, session.Credential{Token: "t", Client: "c", UID: "u", Expiry: "1"}, nil)
	epoch := store.Epoch()

	got, redirected := New(store).Resolve(ctx, Chatroom)
	assert.Equal(t, Entry, got, "expired token is not authenticated")
	assert.True(t, redirected)
	assert.Equal(t, epoch, store.Epoch(), "guard leaves the expired session in place")
	assert.Equal(t, "t", store.Load(ctx).Credential.Token)
}

func TestMiddleware(t *testing.T) {
	auth := &fakeAuth{available: true}
	h := Middleware(func(*http.Request) *Guard { return New(auth) }, Entry, Chatroom)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	rec := do(http.MethodGet, "/chatroom")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusTeapot, do(http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusTeapot, do(http.MethodPost, "/chatroom").Code, "only navigation is guarded")
	assert.Equal(t, http.StatusTeapot, do(http.MethodGet, "/session").Code)

	auth.authed = true
	rec = do(http.MethodGet, "/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/chatroom", rec.Header().Get("Location"))
	assert.Equal(t, http.StatusTeapot, do(http.MethodGet, "/chatroom").Code)
}
