package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spezi-dev/spezi/pkg/filter"
	"github.com/spezi-dev/spezi/pkg/httputil"
	"github.com/spezi-dev/spezi/pkg/repository"
)

const msgInvalidBody = "Invalid request body"

// messages are the client-facing texts for one kind of failure per
// repository error class
type messages struct {
	invalid  string
	notFound string
	failed   string
}

// writeRepoError maps repository errors onto status codes. Anything that
// is neither invalid input nor a missing row is a 500 whose detail is only
// logged.
func (s *Server) writeRepoError(w http.ResponseWriter, r *http.Request, err error, msgs messages) {
	switch {
	case errors.Is(err, repository.ErrInvalidArgument):
		httputil.WriteBadRequest(w, msgs.invalid)
	case errors.Is(err, repository.ErrNotFound):
		httputil.WriteNotFoundError(w, msgs.notFound)
	default:
		s.log(r).WithError(err).WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(msgs.failed)
		httputil.WriteInternalError(w, msgs.failed)
	}
}

// writeJSON encodes v, logging encoder failures since the status line has
// already been sent
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if err := httputil.WriteJSON(w, status, v); err != nil {
		s.log(r).WithError(err).Warn("Failed to encode response")
	}
}

// decodeBody parses the request body into fields, one raw message per
// property, so that each property can be type-checked with its own error
func decodeBody(r *http.Request) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := httputil.ParseJSON(r, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return fields, nil
}

// field decodes property name of a body into an Optional. Absent and null
// properties are unset.
func field[T any](fields map[string]json.RawMessage, name string) (filter.Optional[T], error) {
	var v filter.Optional[T]
	raw, ok := fields[name]
	if !ok {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotFoundError(w, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}
