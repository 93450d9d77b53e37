package module

import (
	"net/http"
	"strings"
)

// Router dispatches requests to mounted modules by the longest matching
// path prefix, falling back to a native ServeMux for unmatched paths.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates a Router with an empty module map and native fallback mux.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the native fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers a module to handle requests matching its prefix.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

// ServeHTTP dispatches to the matching module or falls back to the native mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := normalizePath(req)

	if m, ok := r.match(path); ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

// match walks from the full path toward the root, one segment at a time,
// so "/api/v1/properties/x" tries "/api/v1/properties/x", "/api/v1/properties",
// "/api/v1", then "/api".
func (r *Router) match(path string) (*Module, bool) {
	for p := path; p != ""; {
		if m, ok := r.modules[p]; ok {
			return m, true
		}
		idx := strings.LastIndex(p, "/")
		if idx <= 0 {
			break
		}
		p = p[:idx]
	}
	return nil, false
}

func normalizePath(req *http.Request) string {
	path := req.URL.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
		req.URL.Path = path
	}
	return path
}
