package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spezi-dev/spezi/pkg/auth"
	"github.com/spezi-dev/spezi/pkg/repository"
)

func TestCreateAPIUser(t *testing.T) {
	env := setupServer(t)

	rec := do(t, env.server, http.MethodPost, "/api-users", env.admin.Key, `{"isAdmin": false, "description": "ci runner"}`)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	created := decode[repository.APIUser](t, rec)
	assert.True(t, auth.ValidateKey(created.Key))
	assert.False(t, created.IsAdmin)
	assert.Equal(t, "ci runner", created.Description)
	assert.Nil(t, created.LastLoginAt)

	// The new key works straight away.
	rec = do(t, env.server, http.MethodGet, "/", created.Key, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("description defaults to empty", func(t *testing.T) {
		rec := do(t, env.server, http.MethodPost, "/api-users", env.admin.Key, `{"isAdmin": true}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		u := decode[repository.APIUser](t, rec)
		assert.True(t, u.IsAdmin)
		assert.Empty(t, u.Description)
	})

	tests := []struct {
		name     string
		body     string
		wantText string
	}{
		{"empty body", "", "Invalid request body"},
		{"array body", `[]`, "Invalid request body"},
		{"missing isAdmin", `{}`, "Invalid isAdmin value"},
		{"null isAdmin", `{"isAdmin": null}`, "Invalid isAdmin value"},
		{"string isAdmin", `{"isAdmin": "true"}`, "Invalid isAdmin value"},
		{"numeric isAdmin", `{"isAdmin": 1}`, "Invalid isAdmin value"},
		{"numeric description", `{"isAdmin": false, "description": 7}`, "Invalid description value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, env.server, http.MethodPost, "/api-users", env.admin.Key, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantText, text(rec))
		})
	}
}

func TestGetAPIUser(t *testing.T) {
	env := setupServer(t)

	rec := do(t, env.server, http.MethodGet, "/api-users/"+env.member.Key, env.admin.Key, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[repository.APIUser](t, rec)
	assert.Equal(t, env.member.ID, got.ID)
	assert.Equal(t, env.member.Key, got.Key)
	assert.Equal(t, "member", got.Description)

	rec = do(t, env.server, http.MethodGet, "/api-users/"+auth.GenerateKey(), env.admin.Key, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "API user not found", text(rec))

	rec = do(t, env.server, http.MethodGet, "/api-users/not-a-key", env.admin.Key, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAPIUser(t *testing.T) {
	env := setupServer(t)
	path := "/api-users/" + env.member.Key

	get := func(t *testing.T) *repository.APIUser {
		t.Helper()
		u, err := env.repos.APIUsers.Get(context.Background(), env.member.Key)
		require.NoError(t, err)
		return u
	}

	t.Run("promote keeps description", func(t *testing.T) {
		rec := do(t, env.server, http.MethodPatch, path, env.admin.Key, `{"isAdmin": true}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "API user updated", text(rec))

		u := get(t)
		assert.True(t, u.IsAdmin)
		assert.Equal(t, "member", u.Description)
	})

	t.Run("description only", func(t *testing.T) {
		rec := do(t, env.server, http.MethodPatch, path, env.admin.Key, `{"description": "renamed"}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		u := get(t)
		assert.True(t, u.IsAdmin)
		assert.Equal(t, "renamed", u.Description)
	})

	t.Run("empty update changes nothing", func(t *testing.T) {
		rec := do(t, env.server, http.MethodPatch, path, env.admin.Key, `{}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "renamed", get(t).Description)
	})

	t.Run("null leaves a field alone", func(t *testing.T) {
		rec := do(t, env.server, http.MethodPatch, path, env.admin.Key, `{"isAdmin": false, "description": null}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		u := get(t)
		assert.False(t, u.IsAdmin)
		assert.Equal(t, "renamed", u.Description)
	})

	t.Run("unknown key", func(t *testing.T) {
		rec := do(t, env.server, http.MethodPatch, "/api-users/"+auth.GenerateKey(), env.admin.Key, `{"isAdmin": true}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "API user not found", text(rec))
	})

	t.Run("invalid values", func(t *testing.T) {
		rec := do(t, env.server, http.MethodPatch, path, env.admin.Key, `{"isAdmin": "yes"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid isAdmin value", text(rec))

		rec = do(t, env.server, http.MethodPatch, path, env.admin.Key, `{"description": false}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid description value", text(rec))

		rec = do(t, env.server, http.MethodPatch, path, env.admin.Key, `"x"`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", text(rec))
	})
}

func TestDeleteAPIUser(t *testing.T) {
	env := setupServer(t)

	t.Run("own key via header", func(t *testing.T) {
		rec := do(t, env.server, http.MethodDelete, "/api-users/"+env.admin.Key, env.admin.Key, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot delete own API user", text(rec))
	})

	t.Run("own key via query", func(t *testing.T) {
		q := url.Values{auth.QueryParam: {env.admin.Key}}
		rec := do(t, env.server, http.MethodDelete, "/api-users/"+env.admin.Key+"?"+q.Encode(), "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot delete own API user", text(rec))
	})

	t.Run("identity follows the query key", func(t *testing.T) {
		other, err := env.repos.APIUsers.Create(context.Background(), repository.NewAPIUser{Key: auth.GenerateKey(), IsAdmin: true})
		require.NoError(t, err)

		// The query key authenticates; the header key is ignored and may be
		// deleted.
		q := url.Values{auth.QueryParam: {env.admin.Key}}
		rec := do(t, env.server, http.MethodDelete, "/api-users/"+other.Key+"?"+q.Encode(), other.Key, "")
		assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	})

	t.Run("other key", func(t *testing.T) {
		path := "/api-users/" + env.member.Key

		rec := do(t, env.server, http.MethodDelete, path, env.admin.Key, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "API user deleted", text(rec))

		rec = do(t, env.server, http.MethodGet, path, env.admin.Key, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(t, env.server, http.MethodDelete, path, env.admin.Key, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		// A deleted key no longer authenticates.
		rec = do(t, env.server, http.MethodGet, "/", env.member.Key, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Invalid API key", text(rec))
	})

	_, err := env.repos.APIUsers.Get(context.Background(), env.admin.Key)
	assert.NoError(t, err, "the caller's own key survives")
}

func TestListAPIUsers(t *testing.T) {
	env := setupServer(t)

	list := func(t *testing.T, q url.Values) []repository.APIUser {
		t.Helper()
		rec := do(t, env.server, http.MethodGet, "/api-users?"+q.Encode(), env.admin.Key, "")
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		return decode[[]repository.APIUser](t, rec)
	}

	assert.Len(t, list(t, url.Values{}), 2)

	admins := list(t, url.Values{"isAdmin": {"true"}})
	require.Len(t, admins, 1)
	assert.Equal(t, env.admin.Key, admins[0].Key)

	members := list(t, url.Values{"isAdmin": {"false"}})
	require.Len(t, members, 1)
	assert.Equal(t, env.member.Key, members[0].Key)

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	assert.Empty(t, list(t, url.Values{"createdAfter": {future}}))
	assert.Len(t, list(t, url.Values{"createdBefore": {future}}), 2)

	// Every request above authenticated the admin key, so its last login is
	// set once the background refresh lands.
	require.Eventually(t, func() bool {
		u, err := env.repos.APIUsers.Get(context.Background(), env.admin.Key)
		return err == nil && u.LastLoginAt != nil
	}, 2*time.Second, 10*time.Millisecond)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	logged := list(t, url.Values{"lastLoginAfter": {past}})
	require.Len(t, logged, 1, "keys that never logged in do not match a last-login bound")
	assert.Equal(t, env.admin.Key, logged[0].Key)

	bad := []string{"isAdmin=maybe", "createdBefore=soon", "createdAfter=x", "lastLoginBefore=1/2/2024", "lastLoginAfter=tomorrow"}
	for _, q := range bad {
		t.Run(q, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api-users?"+q, nil)
			req.Header.Set(auth.Header, env.admin.Key)
			rec := httptest.NewRecorder()
			env.server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, text(rec), "Invalid ")
		})
	}
}
