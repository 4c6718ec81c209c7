// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
// Reads and listings are JSON; confirmations and errors are plain text:
//
//	httputil.WriteSuccess(w, users)
//	httputil.WriteCreated(w, user)
//	httputil.WriteSuccessMessage(w, "User deleted")
//	httputil.WriteBadRequest(w, "Invalid user ID")
//
// # Request Parsing
//
//	id, err := httputil.ParsePathID(r, "id")
//	isAdmin, err := httputil.ParseQueryBool(r, "isAdmin")
//	after, err := httputil.ParseQueryTime(r, "after")
//
// Query helpers return filter.Optional values; an absent or empty parameter
// is unset, a malformed one is an error.
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)(router)
//
// # Related Packages
//
//   - pkg/middleware: Authentication and authorization middleware
package httputil
