// Package cli provides the interactive demochat terminal client.
//
// It wires configuration, the persisted session store, the API client and
// the chat channel into a small REPL. The terminal has two views that
// mirror the web routes: the entry view (sign up / log in) and the chat
// room. Moving between them goes through the route guard, so an
// authenticated user landing on the entry view is taken to the chat room
// and an unauthenticated one is kept out of it.
//
// Key commands:
//   - signup / login / logout / whoami
//   - chat, messages, send <text>, status, reconnect, leave
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
