package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tackernao0522/demochat-client/internal/common"
	"github.com/tackernao0522/demochat-client/internal/cryptox"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

var credentialKeys = []string{common.KeyAccessToken, common.KeyClient, common.KeyUID, common.KeyExpiry}

// Store owns the persisted session. It is safe for concurrent use.
//
// Epoch identifies the current identity: it moves on every Save and Clear
// but not on Refresh, so callers can detect that the session they started a
// request under has been replaced while the request was in flight.
type Store struct {
	mu sync.RWMutex

	storage Storage
	reader  Reader
	cipher  cryptox.FieldCipher
	log     logging.Logger
	now     func() time.Time

	epoch uint64
}

type Option func(*Store)

// WithCipher encrypts every entry independently. A nil cipher stores
// plaintext.
func WithCipher(c cryptox.FieldCipher) Option {
	return func(s *Store) { s.cipher = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a Store over storage. A nil storage yields a Store
// without client storage capability.
func NewStore(storage Storage, opts ...Option) *Store {
	s := newStore(opts)
	if storage != nil {
		s.storage = storage
		s.reader = storage
	}
	return s
}

// NewHeaderStore returns a read-only Store over a raw Cookie header, for
// contexts that see request headers but own no client storage.
func NewHeaderStore(cookieHeader string, opts ...Option) *Store {
	s := newStore(opts)
	s.reader = headerReader(ParseCookieHeader(cookieHeader))
	return s
}

func newStore(opts []Option) *Store {
	s := &Store{log: logging.Nop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Available reports whether the store owns a client storage capability.
func (s *Store) Available() bool { return s.storage != nil }

func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Save replaces the stored session with cred and user. Empty fields and a
// nil user are not written. Without storage capability Save does nothing.
func (s *Store) Save(ctx context.Context, cred Credential, user *User) {
	if s.storage == nil {
		s.log.Debug(ctx, "session save skipped: no client storage")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked(ctx)
	s.writeLocked(ctx, cred, user)
	s.epoch++
}

// Refresh stores a credential taken from fresh response headers, keeping
// the stored user. It is applied only when epoch still matches, and reports
// whether it was.
func (s *Store) Refresh(ctx context.Context, epoch uint64, cred Credential) bool {
	if s.storage == nil || !cred.Complete() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.log.Debug(ctx, "auth header refresh dropped", "epoch", epoch, "current", s.epoch)
		return false
	}
	user, err := s.userLocked(ctx)
	if err != nil {
		// an unreadable user entry is left as stored
		s.log.Warn(ctx, "refresh keeps unreadable user entry", "error", err)
		s.deleteLocked(ctx, credentialKeys)
		s.writeLocked(ctx, cred, nil)
		return true
	}
	s.clearLocked(ctx)
	s.writeLocked(ctx, cred, user)
	return true
}

// Clear removes every session entry. Without storage capability Clear does
// nothing.
func (s *Store) Clear(ctx context.Context) {
	if s.storage == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked(ctx)
	s.epoch++
}

// DropIfExpired clears a stored session whose token has expired and reports
// whether it did.
func (s *Store) DropIfExpired(ctx context.Context) bool {
	if s.storage == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, _ := s.credentialLocked(ctx)
	if cred == (Credential{}) || !cred.ExpiredAt(s.now()) {
		return false
	}
	s.log.Info(ctx, "dropping expired session", "uid", cred.UID)
	s.clearLocked(ctx)
	s.epoch++
	return true
}

// Load reads the whole session. It never fails; unreadable entries are
// absent and listed in Problems.
func (s *Store) Load(ctx context.Context) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, problems := s.credentialLocked(ctx)
	user, err := s.userLocked(ctx)
	if err != nil {
		problems = append(problems, err)
	}
	return Session{Credential: cred, User: user, Problems: problems}
}

// Credential returns the stored credential when it is complete.
func (s *Store) Credential(ctx context.Context) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, _ := s.credentialLocked(ctx)
	return cred, cred.Complete()
}

// User returns the stored user or nil.
func (s *Store) User(ctx context.Context) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, _ := s.userLocked(ctx)
	return u
}

// IsAuthenticated reports whether token, client and uid are stored and the
// token has not expired. It is always false without storage capability.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	if s.storage == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, _ := s.credentialLocked(ctx)
	return cred.HasIdentity() && !cred.ExpiredAt(s.now())
}

// IsTokenExpired reports whether the stored expiry is absent, unparsable or
// not in the future.
func (s *Store) IsTokenExpired(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.readLocked(ctx, common.KeyExpiry)
	return Credential{Expiry: r.Value}.ExpiredAt(s.now())
}

// ReadField reads and decrypts one entry.
func (s *Store) ReadField(ctx context.Context, key string) FieldResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readLocked(ctx, key)
}

func (s *Store) readLocked(ctx context.Context, key string) FieldResult {
	if s.reader == nil {
		return FieldResult{}
	}
	raw, ok, err := s.reader.Get(ctx, key)
	if err != nil {
		return s.degrade(ctx, &StorageError{Key: key, Err: err})
	}
	if !ok || raw == "" {
		return FieldResult{}
	}
	if s.cipher != nil {
		plain, err := s.cipher.Decrypt(raw)
		if err != nil {
			return s.degrade(ctx, &DecryptError{Key: key, Err: err})
		}
		raw = plain
	}
	return FieldResult{Value: raw, Present: true}
}

func (s *Store) degrade(ctx context.Context, err error) FieldResult {
	s.log.Warn(ctx, "session entry treated as absent", "error", err)
	return FieldResult{Err: err}
}

func (s *Store) credentialLocked(ctx context.Context) (Credential, []error) {
	var (
		vals     = make(map[string]string, len(credentialKeys))
		problems []error
	)
	for _, k := range credentialKeys {
		r := s.readLocked(ctx, k)
		if r.Err != nil {
			problems = append(problems, r.Err)
			continue
		}
		vals[k] = r.Value
	}
	return Credential{
		Token:  vals[common.KeyAccessToken],
		Client: vals[common.KeyClient],
		UID:    vals[common.KeyUID],
		Expiry: vals[common.KeyExpiry],
	}, problems
}

func (s *Store) userLocked(ctx context.Context) (*User, error) {
	r := s.readLocked(ctx, common.KeyUser)
	if r.Err != nil {
		return nil, r.Err
	}
	if !r.Present {
		return nil, nil
	}
	var u *User
	if err := json.Unmarshal([]byte(r.Value), &u); err != nil {
		perr := &ParseError{Key: common.KeyUser, Err: err}
		s.log.Warn(ctx, "stored user record is not valid JSON", "error", perr)
		return nil, perr
	}
	return u, nil
}

func (s *Store) writeLocked(ctx context.Context, cred Credential, user *User) {
	values := make(map[string]string, len(common.SessionKeys))
	for k, v := range cred.fields() {
		if v != "" {
			values[k] = v
		}
	}
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			s.log.Error(ctx, "encode user record", "error", err)
		} else {
			values[common.KeyUser] = string(b)
		}
	}

	if s.cipher != nil {
		for k, v := range values {
			enc, err := s.cipher.Encrypt(v)
			if err != nil {
				s.log.Error(ctx, "encrypt session entry", "key", k, "error", err)
				delete(values, k)
				continue
			}
			values[k] = enc
		}
	}

	if bw, ok := s.storage.(batchWriter); ok {
		if err := bw.SetMany(ctx, values); err != nil {
			s.log.Error(ctx, "write session", "error", err)
		}
		return
	}
	for k, v := range values {
		if err := s.storage.Set(ctx, k, v); err != nil {
			s.log.Error(ctx, "write session entry", "key", k, "error", err)
		}
	}
}

func (s *Store) clearLocked(ctx context.Context) {
	s.deleteLocked(ctx, common.SessionKeys)
}

func (s *Store) deleteLocked(ctx context.Context, keys []string) {
	if bd, ok := s.storage.(batchDeleter); ok {
		if err := bd.DeleteMany(ctx, keys...); err != nil {
			s.log.Error(ctx, "delete session", "error", err)
		}
		return
	}
	for _, k := range keys {
		if err := s.storage.Delete(ctx, k); err != nil {
			s.log.Error(ctx, "delete session entry", "key", k, "error", err)
		}
	}
}
