package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequest(t *testing.T, method string, url string, body io.Reader, handler func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()

	handler(w, req)

	return w
}

// TestRouteRequest serves the request through a mux registered with pattern
// so path values like {name} are populated.
func TestRouteRequest(t *testing.T, method string, pattern string, url string, body io.Reader, handler func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	return w
}

func TestRequestWithHeaders(t *testing.T, method string, url string, headers map[string][]string, body io.Reader, handler func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}

	for k, v := range headers {
		for _, h := range v {
			req.Header.Add(k, h)
		}
	}

	w := httptest.NewRecorder()
	handler(w, req)

	return w
}

func TestExpectedStatus(t *testing.T, rr *httptest.ResponseRecorder, statusCode int) {
	t.Helper()
	if rr.Code != statusCode {
		t.Errorf("expected status code %d, got %d: %s", statusCode, rr.Code, rr.Body.String())
	}
}

func TestExpectedMessage(t *testing.T, rr *httptest.ResponseRecorder, m string) {
	t.Helper()
	if !strings.Contains(rr.Body.String(), m) {
		t.Errorf("received error message `%s`, expected message `%s`", rr.Body.String(), m)
	}
}

// TestDecodeResponse unmarshals the recorded body into v.
func TestDecodeResponse(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response `%s`: %v", rr.Body.String(), err)
	}
}
