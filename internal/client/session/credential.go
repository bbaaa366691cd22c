package session

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tackernao0522/demochat-client/internal/common"
)

// Credential is the token-auth tuple returned in API response headers.
// Expiry holds Unix seconds as a decimal string.
type Credential struct {
	Token  string
	Client string
	UID    string
	Expiry string
}

// Complete reports whether all four fields are set. Only a complete
// credential may be attached to a request.
func (c Credential) Complete() bool {
	return c.Token != "" && c.Client != "" && c.UID != "" && c.Expiry != ""
}

// HasIdentity reports whether token, client and uid are set.
func (c Credential) HasIdentity() bool {
	return c.Token != "" && c.Client != "" && c.UID != ""
}

// ExpiresAt parses Expiry. ok is false when it is absent or not an integer.
func (c Credential) ExpiresAt() (t time.Time, ok bool) {
	s := strings.TrimSpace(c.Expiry)
	if s == "" {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// ExpiredAt is fail-closed: a missing or unparsable expiry counts as expired.
func (c Credential) ExpiredAt(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	if !ok {
		return true
	}
	return !now.Before(exp)
}

func (c Credential) fields() map[string]string {
	return map[string]string{
		common.KeyAccessToken: c.Token,
		common.KeyClient:      c.Client,
		common.KeyUID:         c.UID,
		common.KeyExpiry:      c.Expiry,
	}
}

// User is the profile record returned by the API. The decoded fields are a
// convenience; the record is kept as received and marshals back to the same
// bytes.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`

	raw json.RawMessage
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = User(p)
	u.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	type plain User
	return json.Marshal(plain(u))
}

// Raw returns the record as received, or nil for a User built in code.
func (u *User) Raw() json.RawMessage {
	if u == nil {
		return nil
	}
	return u.raw
}

// Session is a credential plus the associated user. Problems lists the
// per-entry read failures that were degraded to "absent".
type Session struct {
	Credential Credential
	User       *User
	Problems   []error
}
