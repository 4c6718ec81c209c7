package auth

import (
	"math/rand"
	"net/http"
	"strings"
)

const (
	// KeyPrefix identifies spezi API keys
	KeyPrefix = "spezi_"
	// KeyLength is the number of random characters following the prefix
	KeyLength = 32

	// QueryParam and Header are the two places a client may send its key.
	QueryParam = "api_key"
	Header     = "X-Api-Key"
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateKey creates a new API key.
// Format: spezi_<32 chars of [A-Za-z0-9]>
//
// The random source is math/rand; keys are bearer credentials looked up in
// storage, so uniqueness is enforced by the api_users.api_key constraint.
func GenerateKey() string {
	var b strings.Builder
	b.Grow(len(KeyPrefix) + KeyLength)
	b.WriteString(KeyPrefix)
	for i := 0; i < KeyLength; i++ {
		b.WriteByte(keyAlphabet[rand.Intn(len(keyAlphabet))])
	}
	return b.String()
}

// ValidateKey reports whether key has the exact API key shape. It never
// touches storage, so malformed keys are rejected before any query.
func ValidateKey(key string) bool {
	if len(key) != len(KeyPrefix)+KeyLength || !strings.HasPrefix(key, KeyPrefix) {
		return false
	}
	for i := len(KeyPrefix); i < len(key); i++ {
		if !isAlphanumeric(key[i]) {
			return false
		}
	}
	return true
}

func isAlphanumeric(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9')
}

// ExtractKey returns the API key sent with the request.
// The api_key query parameter wins over the X-Api-Key header; an empty value
// counts as absent.
func ExtractKey(r *http.Request) (string, bool) {
	if key := r.URL.Query().Get(QueryParam); key != "" {
		return key, true
	}
	if key := r.Header.Get(Header); key != "" {
		return key, true
	}
	return "", false
}

// MaskKey shortens a key for log output: the prefix plus the first four
// random characters.
func MaskKey(key string) string {
	if len(key) <= len(KeyPrefix)+4 {
		return key
	}
	return key[:len(KeyPrefix)+4] + "..."
}
