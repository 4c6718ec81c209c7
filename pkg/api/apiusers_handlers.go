package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/spezi-dev/spezi/pkg/auth"
	"github.com/spezi-dev/spezi/pkg/httputil"
	"github.com/spezi-dev/spezi/pkg/repository"
)

var (
	apiUserGetMsgs = messages{
		invalid:  "Invalid API key",
		notFound: "API user not found",
		failed:   "Failed to get API user",
	}
	apiUserCreateMsgs = messages{
		invalid:  "Invalid request body",
		notFound: "API user not found",
		failed:   "Failed to create API user",
	}
	apiUserUpdateMsgs = messages{
		invalid:  "Invalid API key",
		notFound: "API user not found",
		failed:   "Failed to update API user",
	}
	apiUserDeleteMsgs = messages{
		invalid:  "Invalid API key",
		notFound: "API user not found",
		failed:   "Failed to delete API user",
	}
)

// listAPIUsers handles GET /api-users
func (s *Server) listAPIUsers(w http.ResponseWriter, r *http.Request) {
	var (
		f   repository.APIUserFilter
		err error
	)
	if f.IsAdmin, err = httputil.ParseQueryBool(r, "isAdmin"); err != nil {
		httputil.WriteBadRequest(w, "Invalid isAdmin value")
		return
	}
	if f.CreatedBefore, err = httputil.ParseQueryTime(r, "createdBefore"); err != nil {
		httputil.WriteBadRequest(w, "Invalid createdBefore value")
		return
	}
	if f.CreatedAfter, err = httputil.ParseQueryTime(r, "createdAfter"); err != nil {
		httputil.WriteBadRequest(w, "Invalid createdAfter value")
		return
	}
	if f.LastLoginBefore, err = httputil.ParseQueryTime(r, "lastLoginBefore"); err != nil {
		httputil.WriteBadRequest(w, "Invalid lastLoginBefore value")
		return
	}
	if f.LastLoginAfter, err = httputil.ParseQueryTime(r, "lastLoginAfter"); err != nil {
		httputil.WriteBadRequest(w, "Invalid lastLoginAfter value")
		return
	}

	users, err := s.repos.APIUsers.List(r.Context(), f)
	if err != nil {
		s.writeRepoError(w, r, err, messages{failed: "Failed to list API users"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, users)
}

// getAPIUser handles GET /api-users/{key}
func (s *Server) getAPIUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.repos.APIUsers.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeRepoError(w, r, err, apiUserGetMsgs)
		return
	}
	s.writeJSON(w, r, http.StatusOK, u)
}

// createAPIUser handles POST /api-users. The key is generated server side
// and returned once in the response body.
func (s *Server) createAPIUser(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeBody(r)
	if err != nil {
		httputil.WriteBadRequest(w, msgInvalidBody)
		return
	}

	isAdmin, err := field[bool](fields, "isAdmin")
	if err != nil || !isAdmin.IsSet() {
		httputil.WriteBadRequest(w, "Invalid isAdmin value")
		return
	}
	description, err := field[string](fields, "description")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid description value")
		return
	}

	admin, _ := isAdmin.Get()
	u, err := s.repos.APIUsers.Create(r.Context(), repository.NewAPIUser{
		Key:         auth.GenerateKey(),
		IsAdmin:     admin,
		Description: description.OrElse(""),
	})
	if err != nil {
		s.writeRepoError(w, r, err, apiUserCreateMsgs)
		return
	}

	s.log(r).WithFields(map[string]interface{}{
		"api_user_id": u.ID,
		"api_key":     auth.MaskKey(u.Key),
		"is_admin":    u.IsAdmin,
	}).Debug("API user created")
	s.writeJSON(w, r, http.StatusCreated, u)
}

// updateAPIUser handles PATCH /api-users/{key}
func (s *Server) updateAPIUser(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	fields, err := decodeBody(r)
	if err != nil {
		httputil.WriteBadRequest(w, msgInvalidBody)
		return
	}

	var upd repository.APIUserUpdate
	if upd.IsAdmin, err = field[bool](fields, "isAdmin"); err != nil {
		httputil.WriteBadRequest(w, "Invalid isAdmin value")
		return
	}
	if upd.Description, err = field[string](fields, "description"); err != nil {
		httputil.WriteBadRequest(w, "Invalid description value")
		return
	}

	if _, err := s.repos.APIUsers.Update(r.Context(), key, upd); err != nil {
		s.writeRepoError(w, r, err, apiUserUpdateMsgs)
		return
	}

	s.log(r).WithField("api_key", auth.MaskKey(key)).Debug("API user updated")
	httputil.WriteSuccessMessage(w, "API user updated")
}

// deleteAPIUser handles DELETE /api-users/{key}. A key cannot delete
// itself.
func (s *Server) deleteAPIUser(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	if authCtx := auth.FromContext(r.Context()); authCtx != nil && authCtx.Key == key {
		httputil.WriteBadRequest(w, "Cannot delete own API user")
		return
	}

	if err := s.repos.APIUsers.Delete(r.Context(), key); err != nil {
		s.writeRepoError(w, r, err, apiUserDeleteMsgs)
		return
	}

	s.log(r).WithField("api_key", auth.MaskKey(key)).Debug("API user deleted")
	httputil.WriteSuccessMessage(w, "API user deleted")
}
