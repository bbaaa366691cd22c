// Package cryptox provides the per-field ciphers used to protect persisted
// session records.
//
// Two schemes are available:
//
//   - PassphraseCipher: AES-256-CBC in the OpenSSL "Salted__" envelope with an
//     MD5 EVP_BytesToKey derivation, base64 encoded. This is the format the web
//     front end writes into cookies, so records can be shared with it.
//   - GCMCipher: AES-256-GCM with a key derived from the secret via HKDF-SHA256,
//     encoded as base64(nonce || ciphertext).
//
// Every value is encrypted independently; a failure to decrypt one value says
// nothing about any other.
package cryptox
