package api

import (
	"net/http"
	"strings"

	"github.com/spezi-dev/spezi/pkg/httputil"
)

var userMsgs = messages{
	invalid:  "Invalid user ID",
	notFound: "User not found",
	failed:   "Failed to get user",
}

// listUsers handles GET /users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repos.Users.List(r.Context())
	if err != nil {
		s.writeRepoError(w, r, err, messages{failed: "Failed to list users"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, users)
}

// getUser handles GET /users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, userMsgs.invalid)
		return
	}

	u, err := s.repos.Users.Get(r.Context(), id)
	if err != nil {
		s.writeRepoError(w, r, err, userMsgs)
		return
	}
	s.writeJSON(w, r, http.StatusOK, u)
}

// createUser handles POST /users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeBody(r)
	if err != nil {
		httputil.WriteBadRequest(w, msgInvalidBody)
		return
	}

	name, err := field[string](fields, "name")
	if err != nil || strings.TrimSpace(name.OrElse("")) == "" {
		httputil.WriteBadRequest(w, "Invalid user name")
		return
	}

	u, err := s.repos.Users.Create(r.Context(), name.OrElse(""))
	if err != nil {
		s.writeRepoError(w, r, err, messages{
			invalid: "Invalid user name",
			failed:  "Failed to create user",
		})
		return
	}

	s.log(r).WithField("user_id", u.ID).Debug("User created")
	s.writeJSON(w, r, http.StatusCreated, u)
}

// deleteUser handles DELETE /users/{id}
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, userMsgs.invalid)
		return
	}

	if err := s.repos.Users.Delete(r.Context(), id); err != nil {
		s.writeRepoError(w, r, err, messages{
			invalid:  userMsgs.invalid,
			notFound: userMsgs.notFound,
			failed:   "Failed to delete user",
		})
		return
	}

	s.log(r).WithField("user_id", id).Debug("User deleted")
	httputil.WriteSuccessMessage(w, "User deleted")
}
