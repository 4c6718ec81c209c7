// Package middleware provides HTTP middleware for API key authentication
// and admin authorization.
//
// # Authentication
//
//	authMW := middleware.NewAuthMiddleware(repos.APIUsers, runner, logger, metrics)
//	router.Use(authMW.Authenticate)
//
// Authenticate extracts the key with auth.ExtractKey, rejects missing (401),
// malformed (400) and unknown (403) keys, and stores an *auth.Context on the
// request. The key's last-login timestamp is refreshed on the async runner;
// the response never waits for it and never fails because of it.
//
// # Authorization
//
//	router.Handle("/users", authMW.RequireAdmin(http.HandlerFunc(h.createUser))).
//		Methods(http.MethodPost)
//
// RequireAdmin only reads the auth.Context, so it must run after
// Authenticate. Denials are logged with the key masked.
//
// # Related Packages
//
//   - pkg/auth: Key format and extraction
//   - pkg/async: Background last-login refresh
//   - pkg/repository: APIUsers store
package middleware
