package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Module is an HTTP handler that strips its prefix and delegates to an inner router
// with its own middleware stack.
type Module struct {
	prefix string
	router http.Handler

	mu      sync.Mutex
	stack   []func(http.Handler) http.Handler
	handler http.Handler
}

// New creates a Module mounted at prefix (e.g. "/api/v1").
// Panics if the prefix is empty, missing a leading slash, has a trailing slash,
// or contains empty segments.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix: prefix,
		router: router,
	}
}

// Handler returns the inner router wrapped with the module's middleware stack.
// Middleware registered first runs outermost. The chain is built once and
// rebuilt only after a later Use.
func (m *Module) Handler() http.Handler {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handler == nil {
		h := m.router
		for i := len(m.stack) - 1; i >= 0; i-- {
			h = m.stack[i](h)
		}
		m.handler = h
	}
	return m.handler
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the module prefix from the request path and dispatches to the inner router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	path := extractPath(req.URL.Path, m.prefix)
	m.Handler().ServeHTTP(w, cloneRequest(req, path))
}

// Use adds middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stack = append(m.stack, mw)
	m.handler = nil
}

func cloneRequest(req *http.Request, path string) *http.Request {
	request := new(http.Request)
	*request = *req
	request.URL = new(url.URL)
	*request.URL = *req.URL
	request.URL.Path = path
	request.URL.RawPath = ""
	return request
}

func extractPath(fullPath, prefix string) string {
	path := strings.TrimPrefix(fullPath, prefix)
	if path == "" {
		return "/"
	}
	return path
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("module prefix cannot be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	}
	if prefix == "/" || strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("module prefix must not end with /: %s", prefix)
	}
	if strings.Contains(prefix, "//") {
		return fmt.Errorf("module prefix contains an empty segment: %s", prefix)
	}
	return nil
}
