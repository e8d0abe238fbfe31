// Package testutil provides request builders, response assertions and
// Given/When/Then helpers shared by handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewJSONRequest builds a request whose body is body encoded as JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err, "encode request body")
	return NewRequestWithBody(t, method, path, string(raw))
}

// NewRequestWithBody builds a JSON request from a raw body, which may be
// malformed on purpose.
func NewRequestWithBody(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequest builds a request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// DoRequest serves req on handler and returns the recorded response.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// decode reads the recorded body into v without draining the recorder, so
// several assertions can inspect the same response.
func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(v),
		"decode response body: %s", rr.Body.String())
}

// UnmarshalResponse decodes the response body as a T.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var result T
	decode(t, rr, &result)
	return &result
}

func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code, body: %s", rr.Body.String())
}

func AssertStatusOK(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
}

// AssertStatusAndError checks the status and the "error" code of an error
// envelope.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	var body map[string]string
	decode(t, rr, &body)
	assert.Equal(t, expectedCode, body["error"], "unexpected error code")
}

// AssertJSONContains checks one top-level key of a JSON object response.
func AssertJSONContains(t *testing.T, rr *httptest.ResponseRecorder, key string, expectedValue any) {
	t.Helper()
	var body map[string]any
	decode(t, rr, &body)
	assert.Equal(t, expectedValue, body[key], "unexpected value for key %q", key)
}

// AssertFieldErrors asserts a 400 validation envelope with messages for each
// named field.
func AssertFieldErrors(t *testing.T, rr *httptest.ResponseRecorder, fields ...string) map[string][]string {
	t.Helper()
	AssertStatus(t, rr, http.StatusBadRequest)
	var body map[string][]string
	decode(t, rr, &body)
	for _, field := range fields {
		assert.NotEmpty(t, body[field], "expected messages for field %q", field)
	}
	return body
}
