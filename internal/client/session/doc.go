// Package session is the client-side source of truth for "am I logged in,
// and as whom".
//
// A Store persists the token-auth credential (access-token, client, uid,
// expiry) and the user record as five independent entries of a Storage
// medium, each optionally encrypted with a cryptox.FieldCipher. Reads are
// tolerant: an entry that fails to decrypt or parse resolves to absent and
// the problem is reported in Session.Problems, never returned as an error.
//
// The storage capability is injected at construction. A Store built without
// one (NewStore(nil) or NewHeaderStore) can still read, but Save and Clear
// are no-ops and IsAuthenticated is always false.
package session
