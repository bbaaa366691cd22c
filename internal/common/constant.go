// Package common contains constants and small helpers shared by the
// demochat client, the gateway and their tests.
package common

// Header names used by the token-auth API. Requests carry the first three;
// successful responses carry all four.
const (
	HeaderAccessToken = "access-token"
	HeaderClient      = "client"
	HeaderUID         = "uid"
	HeaderExpiry      = "expiry"
)

// Storage keys of the persisted session records.
const (
	KeyAccessToken = "access-token"
	KeyClient      = "client"
	KeyUID         = "uid"
	KeyExpiry      = "expiry"
	KeyUser        = "user"
)

// SessionKeys lists every persisted session record in a stable order.
var SessionKeys = []string{KeyAccessToken, KeyClient, KeyUID, KeyExpiry, KeyUser}

// Environment names recognised by the config layer.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)
