// Package routes declares HTTP endpoints as data and registers them on a
// method-aware http.ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and a pattern relative to its group to a handler.
// An empty Pattern addresses the group prefix itself.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		group.walk("", func(pattern string, route Route) {
			mux.HandleFunc(pattern, route.Handler)
		})
	}
}

// Patterns lists the ServeMux patterns the groups register, in declaration order.
func Patterns(groups ...Group) []string {
	var out []string
	for _, group := range groups {
		group.walk("", func(pattern string, _ Route) {
			out = append(out, pattern)
		})
	}
	return out
}

func (g Group) walk(parentPrefix string, fn func(pattern string, route Route)) {
	fullPrefix := parentPrefix + g.Prefix
	for _, route := range g.Routes {
		fn(route.Method+" "+fullPrefix+route.Pattern, route)
	}
	for _, child := range g.Children {
		child.walk(fullPrefix, fn)
	}
}
