package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/spezi-dev/spezi/pkg/filter"
)

// dateOnly is accepted for timestamp query parameters besides RFC 3339
const dateOnly = "2006-01-02"

// ParseJSON decodes JSON from the request body into the destination.
// An empty body and trailing data are both errors.
func ParseJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("invalid JSON: empty body")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: unexpected data after object")
	}
	return nil
}

// ParsePathString extracts a string path parameter
func ParsePathString(r *http.Request, key string) (string, error) {
	str := mux.Vars(r)[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return str, nil
}

// ParsePathID extracts a positive int64 path parameter
func ParsePathID(r *http.Request, key string) (int64, error) {
	str, err := ParsePathString(r, key)
	if err != nil {
		return 0, err
	}
	return parseID(key, str)
}

func parseID(key, str string) (int64, error) {
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %s", key, str)
	}
	if val <= 0 {
		return 0, fmt.Errorf("%s must be positive: %d", key, val)
	}
	return val, nil
}

// ParseQueryBool parses an optional boolean query parameter
func ParseQueryBool(r *http.Request, key string) (filter.Optional[bool], error) {
	str := strings.TrimSpace(r.URL.Query().Get(key))
	if str == "" {
		return filter.None[bool](), nil
	}
	val, err := strconv.ParseBool(str)
	if err != nil {
		return filter.None[bool](), fmt.Errorf("invalid boolean for query param %s: %s", key, str)
	}
	return filter.Some(val), nil
}

// ParseQueryID parses an optional positive integer query parameter
func ParseQueryID(r *http.Request, key string) (filter.Optional[int64], error) {
	str := strings.TrimSpace(r.URL.Query().Get(key))
	if str == "" {
		return filter.None[int64](), nil
	}
	val, err := parseID(key, str)
	if err != nil {
		return filter.None[int64](), err
	}
	return filter.Some(val), nil
}

// ParseQueryTime parses an optional timestamp query parameter given as
// RFC 3339 or as a date (midnight UTC)
func ParseQueryTime(r *http.Request, key string) (filter.Optional[time.Time], error) {
	str := strings.TrimSpace(r.URL.Query().Get(key))
	if str == "" {
		return filter.None[time.Time](), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		return filter.Some(t.UTC()), nil
	}
	if t, err := time.Parse(dateOnly, str); err == nil {
		return filter.Some(t), nil
	}
	return filter.None[time.Time](), fmt.Errorf("invalid timestamp for query param %s: %s", key, str)
}
