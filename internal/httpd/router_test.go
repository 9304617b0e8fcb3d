package httpd

import (
	"context"
	"testing"
)

func testRouter() *router {
	rt := &router{}
	name := func(label string) handlerFunc {
		return func(ctx context.Context, req *Request, ps params) (int, any) {
			return 200, label
		}
	}
	rt.add("POST", "/users", name("create"))
	rt.add("GET", "/users", name("list"))
	rt.add("GET", "/users/{id}", name("get"))
	rt.add("PUT", "/users/{id}", name("update"))
	rt.add("DELETE", "/users/{id}", name("delete"))
	return rt
}

func invoke(t *testing.T, m routeMatch) string {
	t.Helper()
	_, payload := m.handler(context.Background(), &Request{}, m.params)
	label, ok := payload.(string)
	if !ok {
		t.Fatalf("unexpected payload %v", payload)
	}
	return label
}

func TestRouterMatchesFixedTable(t *testing.T) {
	rt := testRouter()
	cases := []struct {
		method string
		path   string
		want   string
		id     string
	}{
		{"POST", "/users", "create", ""},
		{"GET", "/users", "list", ""},
		{"GET", "/users/42", "get", "42"},
		{"PUT", "/users/42", "update", "42"},
		{"DELETE", "/users/42", "delete", "42"},
	}
	for _, tc := range cases {
		m, ok := rt.match(tc.method, tc.path)
		if !ok {
			t.Fatalf("%s %s: no match", tc.method, tc.path)
		}
		if got := invoke(t, m); got != tc.want {
			t.Fatalf("%s %s: matched %q, want %q", tc.method, tc.path, got, tc.want)
		}
		if tc.id != "" && m.params["id"] != tc.id {
			t.Fatalf("%s %s: id param %q, want %q", tc.method, tc.path, m.params["id"], tc.id)
		}
	}
}

func TestRouterRejectsNonMatches(t *testing.T) {
	rt := testRouter()
	cases := []struct {
		method string
		path   string
	}{
		{"GET", "/"},
		{"GET", "/teams"},
		{"POST", "/users/42"},
		{"HEAD", "/users"},
		{"GET", "/users/42/email"},
		{"GET", "/users/"},   // no trailing-slash normalization
		{"DELETE", "/users"}, // collection delete not routed
	}
	for _, tc := range cases {
		if _, ok := rt.match(tc.method, tc.path); ok {
			t.Fatalf("%s %s unexpectedly matched", tc.method, tc.path)
		}
	}
}

func TestRouterBindsRawSegment(t *testing.T) {
	rt := testRouter()
	m, ok := rt.match("GET", "/users/abc")
	if !ok {
		t.Fatal("expected match; integer validation is the handler's job")
	}
	if m.params["id"] != "abc" {
		t.Fatalf("id param %q, want %q", m.params["id"], "abc")
	}
}

func TestRouterIgnoresQueryString(t *testing.T) {
	rt := testRouter()
	m, ok := rt.match("GET", "/users/7?verbose=1")
	if !ok {
		t.Fatal("expected match")
	}
	if m.params["id"] != "7" {
		t.Fatalf("id param %q, want %q", m.params["id"], "7")
	}
}

func TestRouterFirstMatchWins(t *testing.T) {
	rt := &router{}
	rt.add("GET", "/users/{id}", func(ctx context.Context, req *Request, ps params) (int, any) {
		return 200, "first"
	})
	rt.add("GET", "/users/{name}", func(ctx context.Context, req *Request, ps params) (int, any) {
		return 200, "second"
	})
	m, ok := rt.match("GET", "/users/1")
	if !ok {
		t.Fatal("expected match")
	}
	if got := invoke(t, m); got != "first" {
		t.Fatalf("matched %q, want declaration-order winner", got)
	}
}
