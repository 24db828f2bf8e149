package testing

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockPayloadServer serves payload files over HTTP for download tests
type MockPayloadServer struct {
	*httptest.Server
	Responses map[string]MockResponse
	Requests  []MockRequest

	mu sync.Mutex
}

// MockResponse holds response data for a path
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// MockRequest records a request made to the mock server
type MockRequest struct {
	Method string
	Path   string
}

// NewMockPayloadServer creates a new mock payload server
func NewMockPayloadServer(t *testing.T) *MockPayloadServer {
	t.Helper()

	mock := &MockPayloadServer{
		Responses: make(map[string]MockResponse),
		Requests:  make([]MockRequest, 0),
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.Requests = append(mock.Requests, MockRequest{
			Method: r.Method,
			Path:   r.URL.Path,
		})
		response, ok := mock.Responses[r.URL.Path]
		mock.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		for key, value := range response.Headers {
			w.Header().Set(key, value)
		}
		if response.Headers["Content-Type"] == "" {
			w.Header().Set("Content-Type", "application/octet-stream")
		}

		if response.StatusCode != 0 {
			w.WriteHeader(response.StatusCode)
		}

		if r.Method != http.MethodHead {
			w.Write(response.Body)
		}
	}))

	t.Cleanup(func() {
		mock.Server.Close()
	})

	return mock
}

// SetFile serves data at path with status 200
func (m *MockPayloadServer) SetFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[path] = MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
	}
}

// SetError serves an error status at path
func (m *MockPayloadServer) SetError(path string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[path] = MockResponse{
		StatusCode: statusCode,
		Body:       []byte(http.StatusText(statusCode)),
	}
}

// FileURL returns the absolute URL for path
func (m *MockPayloadServer) FileURL(path string) string {
	return m.Server.URL + path
}

// GetRequestCount returns the number of GET requests made to a path
func (m *MockPayloadServer) GetRequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, req := range m.Requests {
		if req.Path == path && req.Method == http.MethodGet {
			count++
		}
	}
	return count
}
