package httpd

import (
	"context"
	"strings"
)

// params maps path-parameter names to the raw segment values, e.g.
// "id" -> "42".
type params map[string]string

type handlerFunc func(ctx context.Context, req *Request, ps params) (int, any)

type route struct {
	method  string
	pattern string
	handler handlerFunc
}

// router holds the fixed route table. Matching walks the table in
// declaration order and stops at the first hit.
type router struct {
	routes []route
}

func (rt *router) add(method, pattern string, handler handlerFunc) {
	rt.routes = append(rt.routes, route{method: method, pattern: pattern, handler: handler})
}

type routeMatch struct {
	handler handlerFunc
	pattern string
	params  params
}

// match finds the route for a method and path. Query strings are not
// part of the route space and are cut before matching. Paths match
// exactly, segment for segment: no trailing-slash normalization.
func (rt *router) match(method, path string) (routeMatch, bool) {
	path, _, _ = strings.Cut(path, "?")
	for _, r := range rt.routes {
		if r.method != method {
			continue
		}
		if ps, ok := matchPattern(r.pattern, path); ok {
			return routeMatch{handler: r.handler, pattern: r.pattern, params: ps}, true
		}
	}
	return routeMatch{}, false
}

func matchPattern(pattern, path string) (params, bool) {
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")
	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}
	var ps params
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			value := pathSegs[i]
			if value == "" {
				return nil, false
			}
			if ps == nil {
				ps = make(params)
			}
			ps[seg[1:len(seg)-1]] = value
			continue
		}
		if seg != pathSegs[i] {
			return nil, false
		}
	}
	return ps, true
}
