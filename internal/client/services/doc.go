// Package services contains application services for the demochat client:
// authentication against the token-auth API and the chat room (message
// listing plus the realtime channel).
//
// Both services take the session store explicitly. Any response that
// arrives after the session changed underneath it (login, logout, clear)
// is discarded with ErrStaleResponse instead of being applied.
package services
