// Package client talks to the demochat token-auth REST API.
//
// # Overview
//
//  1. A transport-agnostic contract (see Client): SignIn, SignUp, SignOut,
//     ValidateToken and Messages.
//  2. A resty implementation (see RESTClient). Before each request it
//     attaches the stored credential as access-token/client/uid headers;
//     after each response that carries all four auth headers it refreshes
//     the session store, keeping the stored user.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. HTTP error statuses are returned
// as *APIError; a 401 also matches ErrUnauthorized with errors.Is. Requests
// are never retried. UserMessage turns any of these into display text.
package client
