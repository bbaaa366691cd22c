package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackernao0522/demochat-client/internal/client/repositories/localstore"
	"github.com/tackernao0522/demochat-client/internal/common"
	"github.com/tackernao0522/demochat-client/internal/cryptox"
)

func TestParseCookieHeader(t *testing.T) {
	got := ParseCookieHeader("access-token=t%2B1; client=c1;uid=ann%40example.com ; junk; expiry=99; b64=YQ==; uid=last")

	assert.Equal(t, map[string]string{
		"access-token": "t+1",
		"client":       "c1",
		"uid":          "last",
		"expiry":       "99",
		"b64":          "YQ==",
	}, got)
}

func TestParseCookieHeader_BadEscapeKeepsRaw(t *testing.T) {
	got := ParseCookieHeader("k=100%zz")
	assert.Equal(t, "100%zz", got["k"])
}

func TestHeaderStore_ReadsEncryptedCookies(t *testing.T) {
	ctx := context.Background()
	c := cryptox.NewPassphraseCipher("test_encryption_key")

	header := ""
	for k, v := range validCred().fields() {
		enc, err := c.Encrypt(v)
		require.NoError(t, err)
		header += k + "=" + url.QueryEscape(enc) + "; "
	}
	user, err := c.Encrypt(`{"id":7,"name":"Ann"}`)
	require.NoError(t, err)
	header += "user=" + url.QueryEscape(user)

	s := NewHeaderStore(header, WithCipher(c), WithClock(clock))
	got := s.Load(ctx)

	assert.Equal(t, validCred(), got.Credential)
	require.NotNil(t, got.User)
	assert.Equal(t, int64(7), got.User.ID)
	assert.False(t, s.IsTokenExpired(ctx))

	assert.False(t, s.Available())
	assert.False(t, s.IsAuthenticated(ctx), "header-only reader has no client storage")
	s.Save(ctx, Credential{}, nil)
	assert.Equal(t, validCred(), s.Load(ctx).Credential, "save is a no-op")
}

func TestCookieStorage_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s := NewStore(NewCookieStorage(rec, req, CookieOptions{}), WithClock(clock))
	s.Save(ctx, validCred(), annUser(t))

	assert.True(t, s.IsAuthenticated(ctx), "writes are visible within the request")

	res := rec.Result()
	defer res.Body.Close()
	set := map[string]*http.Cookie{}
	for _, ck := range res.Cookies() {
		set[ck.Name] = ck
	}
	ck, ok := set[common.KeyAccessToken]
	require.True(t, ok)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, "t1", ck.Value)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range res.Cookies() {
		if ck.MaxAge >= 0 {
			next.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}
	s2 := NewStore(NewCookieStorage(httptest.NewRecorder(), next, CookieOptions{}), WithClock(clock))
	got := s2.Load(ctx)
	assert.Equal(t, validCred(), got.Credential)
	require.NotNil(t, got.User)
	assert.Equal(t, "Ann", got.User.Name)
}

func TestCookieStorage_ProductionSameSiteNone(t *testing.T) {
	rec := httptest.NewRecorder()
	cs := NewCookieStorage(rec, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{Production: true})

	require.NoError(t, cs.Set(context.Background(), "client", "c/1 2"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
	assert.Equal(t, "c%2F1%202", cookies[0].Value)
}

func TestCookieStorage_DeleteExpiresCookie(t *testing.T) {
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "uid", Value: "u1"})
	rec := httptest.NewRecorder()
	cs := NewCookieStorage(rec, req, CookieOptions{})

	v, ok, _ := cs.Get(ctx, "uid")
	require.True(t, ok)
	assert.Equal(t, "u1", v)

	require.NoError(t, cs.Delete(ctx, "uid"))
	_, ok, _ = cs.Get(ctx, "uid")
	assert.False(t, ok)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRepositoryStorage_PersistsSession(t *testing.T) {
	ctx := context.Background()
	repo, err := localstore.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	c := cryptox.NewPassphraseCipher("k")
	s := NewStore(NewRepositoryStorage(repo), WithCipher(c), WithClock(clock))
	s.Save(ctx, validCred(), annUser(t))

	for _, k := range common.SessionKeys {
		_, ok, err := repo.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
	}

	again := NewStore(NewRepositoryStorage(repo), WithCipher(c), WithClock(clock))
	assert.True(t, again.IsAuthenticated(ctx))
	assert.Equal(t, "Ann", again.User(ctx).Name)

	again.Clear(ctx)
	for _, k := range common.SessionKeys {
		_, ok, err := repo.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
}
