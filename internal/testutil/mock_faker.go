// Package testutil provides testing utilities for the person pipeline.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock Faker API response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockFaker is a configurable mock Faker API server for testing.
type MockFaker struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestQuery  map[string][]string
	LastRequestHeader http.Header
}

// NewMockFaker creates a new mock Faker API server.
func NewMockFaker() *MockFaker {
	mock := &MockFaker{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestQuery = r.URL.Query()
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockFaker) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockFaker) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockFaker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestQuery = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockFaker) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockFaker) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetFailThenSucceed configures a path to return failStatus for the
// first failures requests and the given success body afterwards.
func (m *MockFaker) SetFailThenSucceed(path string, failures, failStatus int, successBody string) {
	var mu sync.Mutex
	count := 0

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		n := count
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if n <= failures {
			w.WriteHeader(failStatus)
			w.Write([]byte(`{"error": "simulated failure"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(successBody))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockFaker) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// defaultHandler responds with an empty OK envelope.
func (m *MockFaker) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(EnvelopeBody()))
}

// PersonJSON builds a complete, valid raw person record with the given
// id, birthday, email, city, and country.
func PersonJSON(id int, birthday, email, city, country string) string {
	return fmt.Sprintf(`{
		"id": %d,
		"firstname": "John",
		"lastname": "Doe",
		"email": %q,
		"phone": "+1234567890",
		"birthday": %q,
		"gender": "male",
		"website": "http://example.com",
		"image": "http://example.com/image.jpg",
		"address": {
			"id": %d,
			"street": "123 Main St",
			"streetName": "Main St",
			"buildingNumber": "123",
			"city": %q,
			"zipcode": "12345",
			"country": %q,
			"country_code": "US",
			"latitude": 42.123,
			"longitude": -71.123
		}
	}`, id, email, birthday, id, city, country)
}

// EnvelopeBody wraps raw person records in an OK response envelope.
func EnvelopeBody(records ...string) string {
	return fmt.Sprintf(`{"status": "OK", "code": 200, "total": %d, "data": [%s]}`,
		len(records), strings.Join(records, ","))
}

// ErrorEnvelopeBody builds a response envelope with a non-OK status.
func ErrorEnvelopeBody(status string) string {
	return fmt.Sprintf(`{"status": %q, "code": 500, "total": 0, "data": []}`, status)
}
