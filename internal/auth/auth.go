package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

var (
	ErrNoAuthHeader  = errors.New("authorization header not found")
	ErrInvalidApiKey = errors.New("invalid API key")
)

func ParseApiKey(r *http.Request) (string, error) {

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthHeader
	}

	var apiKey string
	n, err := fmt.Sscanf(authHeader, "ApiKey %s", &apiKey)
	if n != 1 || err != nil {
		return "", ErrNoAuthHeader
	}

	return apiKey, nil
}

// CheckApiKey verifies the request carries the expected key. An empty
// expected key disables the check.
func CheckApiKey(r *http.Request, expected string) error {
	if expected == "" {
		return nil
	}

	apiKey, err := ParseApiKey(r)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
		return ErrInvalidApiKey
	}

	return nil
}

// RequireApiKey wraps a handler that changes controller state.
func RequireApiKey(expected string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := CheckApiKey(r, expected); err != nil {
			slog.Debug("rejected request", "method", r.Method, "path", r.URL.Path)
			utils.RespondWithError(w, http.StatusForbidden, "a valid API key is required", err)
			return
		}

		next(w, r)
	}
}
