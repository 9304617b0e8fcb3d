package httpd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/nyxlabs/userd/internal/domain"
)

func splitResponse(t *testing.T, raw string) (statusLine string, headers map[string]string, body string) {
	t.Helper()
	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	if !ok {
		t.Fatalf("no header terminator in %q", raw)
	}
	lines := strings.Split(head, "\r\n")
	headers = make(map[string]string)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			t.Fatalf("bad header line %q", line)
		}
		headers[strings.ToLower(name)] = strings.TrimSpace(value)
	}
	return lines[0], headers, body
}

func TestWriteJSONProducesWellFormedResponse(t *testing.T) {
	var buf bytes.Buffer
	u := domain.User{ID: 7, Name: "Ada", Email: "ada@x.com"}
	if err := writeJSON(&buf, 200, false, u); err != nil {
		t.Fatalf("write: %v", err)
	}

	statusLine, headers, body := splitResponse(t, buf.String())
	if statusLine != "HTTP/1.1 200 OK" {
		t.Fatalf("status line %q", statusLine)
	}
	if headers["content-type"] != "application/json" {
		t.Fatalf("content type %q", headers["content-type"])
	}
	if headers["connection"] != "keep-alive" {
		t.Fatalf("connection %q", headers["connection"])
	}
	want := `{"id":7,"name":"Ada","email":"ada@x.com"}`
	if body != want {
		t.Fatalf("body %q, want %q", body, want)
	}
}

func TestWriteJSONContentLengthMatchesBodyBytes(t *testing.T) {
	payloads := []any{
		domain.User{ID: 1, Name: "Ada", Email: "ada@x.com"},
		[]domain.User{},
		[]domain.User{{ID: 1, Name: "Ada", Email: "ada@x.com"}, {ID: 2, Name: "Grace", Email: "grace@x.com"}},
		map[string]string{"error": "user not found"},
	}
	for i, payload := range payloads {
		var buf bytes.Buffer
		if err := writeJSON(&buf, 200, false, payload); err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		_, headers, body := splitResponse(t, buf.String())
		declared, err := strconv.Atoi(headers["content-length"])
		if err != nil {
			t.Fatalf("payload %d: content-length %q", i, headers["content-length"])
		}
		if declared != len(body) {
			t.Fatalf("payload %d: declared %d bytes, body has %d", i, declared, len(body))
		}
	}
}

func TestWriteErrorShape(t *testing.T) {
	var buf bytes.Buffer
	if err := writeError(&buf, 404, true, "user not found"); err != nil {
		t.Fatalf("write: %v", err)
	}
	statusLine, headers, body := splitResponse(t, buf.String())
	if statusLine != "HTTP/1.1 404 Not Found" {
		t.Fatalf("status line %q", statusLine)
	}
	if headers["connection"] != "close" {
		t.Fatalf("connection %q", headers["connection"])
	}
	if body != `{"error":"user not found"}` {
		t.Fatalf("body %q", body)
	}
}

func TestWriteJSONIsDeterministic(t *testing.T) {
	u := domain.User{ID: 3, Name: "Edsger", Email: "edsger@x.com"}
	var first, second bytes.Buffer
	if err := writeJSON(&first, 200, false, u); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := writeJSON(&second, 200, false, u); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("responses differ:\n%q\n%q", first.String(), second.String())
	}
}

func TestReasonPhrases(t *testing.T) {
	for status, want := range map[int]string{
		200: "OK",
		400: "Bad Request",
		404: "Not Found",
		429: "Too Many Requests",
		500: "Internal Server Error",
	} {
		var buf bytes.Buffer
		if err := writeJSON(&buf, status, false, struct{}{}); err != nil {
			t.Fatalf("write %d: %v", status, err)
		}
		wantLine := fmt.Sprintf("HTTP/1.1 %d %s", status, want)
		if !strings.HasPrefix(buf.String(), wantLine) {
			t.Fatalf("status %d: got %q", status, strings.SplitN(buf.String(), "\r\n", 2)[0])
		}
	}
}
