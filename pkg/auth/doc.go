// Package auth provides API key issuance and validation for the spezi API.
//
// # Overview
//
// API keys are the only credential the service accepts. A key is the
// literal prefix "spezi_" followed by 32 characters drawn from [A-Za-z0-9]:
//
//	key := auth.GenerateKey()
//	// spezi_Q3v9xk0LmA7bT2cR8dE1fG4hJ6kN5pS0
//
// ValidateKey checks the shape only, so malformed keys can be rejected
// without a storage round-trip:
//
//	if !auth.ValidateKey(key) {
//		return errors.New("invalid API key format")
//	}
//
// # Transport
//
// Clients send the key as the api_key query parameter or the X-Api-Key
// header. ExtractKey is the single place that decides between the two; the
// query parameter wins when both are present.
//
// # Request Context
//
// After the key has been resolved against storage the middleware stores an
// *auth.Context on the request:
//
//	authCtx := auth.FromContext(r.Context())
//	if authCtx == nil || !authCtx.IsAdmin {
//		http.Error(w, "Admin API key required", http.StatusForbidden)
//		return
//	}
//
// # Related Packages
//
//   - pkg/middleware: Authenticate and RequireAdmin
//   - pkg/repository: APIUsers storage
package auth
