package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext holds per-scenario HTTP state against a running server.
type TestContext struct {
	BaseURL string
	client  *http.Client

	lastStatus int
	lastBody   []byte
}

// NewTestContext targets the server at baseURL.
func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears the previous response between scenarios.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
}

// POST sends body as JSON.
func (tc *TestContext) POST(path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET issues a GET request with optional headers.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	return nil
}

// StatusCode returns the status of the last response.
func (tc *TestContext) StatusCode() int {
	return tc.lastStatus
}

// DecodeResponse unmarshals the last response body into v.
func (tc *TestContext) DecodeResponse(v interface{}) error {
	if err := json.Unmarshal(tc.lastBody, v); err != nil {
		return fmt.Errorf("decode response %q: %w", tc.lastBody, err)
	}
	return nil
}

// GetResponseField returns a top-level field of a JSON object response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var obj map[string]interface{}
	if err := tc.DecodeResponse(&obj); err != nil {
		return nil, err
	}
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response %s", field, tc.lastBody)
	}
	return v, nil
}

// ResponseContains reports whether the last JSON object response has field.
func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}
