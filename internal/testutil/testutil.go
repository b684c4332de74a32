// Package testutil provides helpers for HTTP-level tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
)

// TestServer wraps httptest.Server with a cookie-aware client so that
// session flows (login, then authenticated calls) work like a browser.
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	Client  *http.Client
	t       *testing.T
}

// NewTestServer starts a server around the given router.
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		Client:  &http.Client{Jar: jar},
		t:       t,
	}
}

// GET performs a GET request to the given path.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := ts.Client.Get(ts.BaseURL + path)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// POST performs a POST request to the given path.
func (ts *TestServer) POST(path string, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()
	resp, err := ts.Client.Post(ts.BaseURL+path, contentType, body)
	if err != nil {
		ts.t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// PUT performs a PUT request to the given path.
func (ts *TestServer) PUT(path string, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()
	req, err := http.NewRequest(http.MethodPut, ts.BaseURL+path, body)
	if err != nil {
		ts.t.Fatalf("PUT %s: %v", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	return ts.Do(req)
}

// Do executes an arbitrary request through the cookie-aware client.
func (ts *TestServer) Do(req *http.Request) *http.Response {
	ts.t.Helper()
	resp, err := ts.Client.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

// ClearCookies drops all stored cookies, simulating a fresh client.
func (ts *TestServer) ClearCookies() {
	jar, err := cookiejar.New(nil)
	if err != nil {
		ts.t.Fatalf("cookie jar: %v", err)
	}
	ts.Client.Jar = jar
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// ReadBody reads and returns the response body as a string.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}
