package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

func TestParseApiKey(t *testing.T) {
	tests := []struct {
		name   string
		header string
		key    string
		err    error
	}{
		{"missing header", "", "", ErrNoAuthHeader},
		{"wrong scheme", "Bearer 1234", "", ErrNoAuthHeader},
		{"valid", "ApiKey 1234", "1234", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			key, err := ParseApiKey(req)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected error %v, got %v", tt.err, err)
			}
			if key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, key)
			}
		})
	}
}

func TestRequireApiKey(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}

	t.Run("should reject a wrong key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/v1/watering", nil)
		req.Header.Set("Authorization", "ApiKey nope")
		rr := httptest.NewRecorder()

		RequireApiKey("secret", next)(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("expected status code %d, got %d", http.StatusForbidden, rr.Code)
		}
		if called {
			t.Error("handler should not run")
		}
		if rr.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected a JSON error, got %q", rr.Header().Get("Content-Type"))
		}
		utils.TestExpectedMessage(t, rr, `{"error":"a valid API key is required"}`)
	})

	t.Run("should pass the right key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/v1/watering", nil)
		req.Header.Set("Authorization", "ApiKey secret")
		rr := httptest.NewRecorder()

		RequireApiKey("secret", next)(rr, req)

		if rr.Code != http.StatusNoContent || !called {
			t.Errorf("expected handler to run, got status %d", rr.Code)
		}
	})

	t.Run("should pass everything when no key is configured", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/v1/watering", nil)
		rr := httptest.NewRecorder()

		RequireApiKey("", next)(rr, req)

		if !called {
			t.Error("handler should run")
		}
	})
}
