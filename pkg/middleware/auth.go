package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spezi-dev/spezi/pkg/auth"
	"github.com/spezi-dev/spezi/pkg/httputil"
	"github.com/spezi-dev/spezi/pkg/observability"
	"github.com/spezi-dev/spezi/pkg/repository"
)

// Challenge is sent with 401 and unknown-key 403 responses
const Challenge = `Basic realm="api"`

// Response bodies
const (
	msgNoKey        = "No API key provided"
	msgInvalidFmt   = "Invalid API key format"
	msgInvalidKey   = "Invalid API key"
	msgAdminOnly    = "Admin API key required"
	msgLookupFailed = "Failed to verify API key"
)

// touchTask names the last-login refresh in logs and metrics
const touchTask = "touch last login"

// KeyStore resolves API keys and records their use
type KeyStore interface {
	Get(ctx context.Context, key string) (*repository.APIUser, error)
	TouchLastLogin(ctx context.Context, key string, at time.Time) error
}

// TaskRunner runs detached background work
type TaskRunner interface {
	Go(ctx context.Context, task string, fn func(context.Context) error) error
}

// AuthMiddleware authenticates requests by API key
type AuthMiddleware struct {
	store   KeyStore
	runner  TaskRunner
	logger  *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewAuthMiddleware creates a new authentication middleware. metrics may be nil.
func NewAuthMiddleware(store KeyStore, runner TaskRunner, logger *observability.Logger, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		store:   store,
		runner:  runner,
		logger:  logger,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate resolves the request's API key. Outcomes, in order:
//
//	no key          401 + challenge
//	malformed key   400
//	unknown key     403 + challenge
//	lookup failure  500
//	accepted        auth.Context stored, last login refreshed in background
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := auth.ExtractKey(r)
		if !ok {
			m.metrics.RecordAuth(observability.AuthOutcomeMissing)
			w.Header().Set("WWW-Authenticate", Challenge)
			httputil.WriteUnauthorized(w, msgNoKey)
			return
		}

		if !auth.ValidateKey(key) {
			m.metrics.RecordAuth(observability.AuthOutcomeMalformed)
			httputil.WriteBadRequest(w, msgInvalidFmt)
			return
		}

		apiUser, err := m.store.Get(r.Context(), key)
		if errors.Is(err, repository.ErrNotFound) {
			m.metrics.RecordAuth(observability.AuthOutcomeUnknown)
			w.Header().Set("WWW-Authenticate", Challenge)
			httputil.WriteForbidden(w, msgInvalidKey)
			return
		}
		if err != nil {
			m.metrics.RecordAuth(observability.AuthOutcomeError)
			observability.FromContext(r.Context()).WithError(err).Error("API key lookup failed")
			httputil.WriteInternalError(w, msgLookupFailed)
			return
		}

		m.metrics.RecordAuth(observability.AuthOutcomeAccepted)
		m.touchLastLogin(r.Context(), key)

		ctx := auth.WithContext(r.Context(), &auth.Context{
			Key:       apiUser.Key,
			APIUserID: apiUser.ID,
			IsAdmin:   apiUser.IsAdmin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// touchLastLogin schedules the refresh and never reports back to the request
func (m *AuthMiddleware) touchLastLogin(ctx context.Context, key string) {
	at := m.now()
	err := m.runner.Go(ctx, touchTask, func(ctx context.Context) error {
		return m.store.TouchLastLogin(ctx, key, at)
	})
	if err != nil {
		m.logger.WithError(err).Warn("Last login refresh not scheduled")
	}
}

// RequireAdmin lets through requests whose authenticated key carries the
// admin flag. It must be installed after Authenticate; a request without
// an auth.Context is rejected like a non-admin.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := auth.FromContext(r.Context())
		if authCtx == nil || !authCtx.IsAdmin {
			m.metrics.RecordAuth(observability.AuthOutcomeAdminDenied)

			entry := observability.FromContext(r.Context()).WithFields(map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			if authCtx != nil {
				entry = entry.WithField("api_key", auth.MaskKey(authCtx.Key))
			}
			entry.Warn("Admin access denied")

			httputil.WriteForbidden(w, msgAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.Context {
	return auth.FromContext(r.Context())
}
