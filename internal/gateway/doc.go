// Package gateway serves the demochat web routes.
//
// The gateway is the request-handling side of the client: each request gets
// its own session store over the browser's cookies, the route guard runs in
// front of the entry and chat pages, and the auth forms post to handlers
// that call the API and write the auth cookies back. In production every
// request additionally needs the configured basic-auth credentials.
//
// Routes:
//
//	GET  /          entry page (login and sign-up forms)
//	POST /login     sign in, then 303 to /chatroom
//	POST /signup    sign up, then 303 to /chatroom
//	POST /logout    sign out, then 303 to /
//	GET  /chatroom  message list (requires a session)
//	GET  /session   JSON view of what a header-only reader sees
//	GET  /healthz   liveness
package gateway
