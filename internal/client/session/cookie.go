package session

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ParseCookieHeader splits a raw Cookie header into name/value pairs.
// Pairs are separated by ";" and split on the first "="; values are
// percent-decoded, falling back to the raw text when decoding fails. A
// repeated name keeps its last value.
func ParseCookieHeader(header string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		out[name] = decodeValue(strings.TrimSpace(value))
	}
	return out
}

func decodeValue(v string) string {
	if d, err := url.PathUnescape(v); err == nil {
		return d
	}
	return v
}

// headerReader serves entries parsed from a Cookie header.
type headerReader map[string]string

func (h headerReader) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := h[key]
	return v, ok, nil
}

// CookieOptions controls the attributes of cookies written by CookieStorage.
type CookieOptions struct {
	// Production switches SameSite from Lax to None.
	Production bool
	// MaxAge of written cookies; zero writes session cookies.
	MaxAge time.Duration
}

// CookieStorage reads entries from a request's cookies and writes them back
// as Set-Cookie headers on the response. Writes made while handling the
// request are visible to later reads of the same request.
type CookieStorage struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions

	mu      sync.Mutex
	overlay map[string]*string
}

func NewCookieStorage(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStorage {
	return &CookieStorage{w: w, r: r, opts: opts, overlay: make(map[string]*string)}
}

func (c *CookieStorage) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	v, written := c.overlay[key]
	c.mu.Unlock()
	if written {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	ck, err := c.r.Cookie(key)
	if err != nil {
		return "", false, nil
	}
	return decodeValue(ck.Value), true, nil
}

func (c *CookieStorage) Set(_ context.Context, key, value string) error {
	ck := c.cookie(key, url.PathEscape(value))
	if c.opts.MaxAge > 0 {
		ck.MaxAge = int(c.opts.MaxAge / time.Second)
	}
	http.SetCookie(c.w, ck)

	c.mu.Lock()
	c.overlay[key] = &value
	c.mu.Unlock()
	return nil
}

func (c *CookieStorage) Delete(_ context.Context, key string) error {
	ck := c.cookie(key, "")
	ck.MaxAge = -1
	http.SetCookie(c.w, ck)

	c.mu.Lock()
	c.overlay[key] = nil
	c.mu.Unlock()
	return nil
}

func (c *CookieStorage) cookie(name, value string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.opts.Production {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Secure:   true,
		SameSite: sameSite,
	}
}
