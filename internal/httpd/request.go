package httpd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed reports a request the parser could not frame. The
// connection loop answers it with a 400 and closes the connection.
var ErrMalformed = errors.New("malformed request")

const maxHeaderCount = 100

var supportedMethods = map[string]bool{
	"GET":    true,
	"HEAD":   true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
}

// Header is a single request header pair. Order of arrival is preserved.
type Header struct {
	Name  string
	Value string
}

// Request is one parsed HTTP/1.1 message. It lives for a single
// request-handling cycle and is discarded once the response is written.
type Request struct {
	Method  string
	Path    string
	Proto   string
	Headers []Header
	Body    []byte
}

// Header returns the first header with the given name, matched
// case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

type parseState int

const (
	stateReadLine parseState = iota
	stateReadHeaders
	stateReadBody
	stateDone
)

type parserLimits struct {
	maxHeaderBytes int
	maxBodyBytes   int
}

// parseRequest consumes exactly one HTTP/1.1 message from r. It returns
// io.EOF when the peer closed the connection before sending anything,
// and ErrMalformed (wrapped with detail) for anything it cannot frame.
// Blocking is bounded by the read deadline the caller set on the
// underlying connection.
func parseRequest(r *bufio.Reader, limits parserLimits) (*Request, error) {
	req := &Request{}
	headerBytes := 0

	for state := stateReadLine; state != stateDone; {
		switch state {
		case stateReadLine:
			line, err := readLine(r, limits.maxHeaderBytes)
			if err != nil {
				if errors.Is(err, io.EOF) {
					if line == "" {
						return nil, io.EOF
					}
					return nil, fmt.Errorf("%w: truncated request line", ErrMalformed)
				}
				return nil, err
			}
			if err := parseRequestLine(req, line); err != nil {
				return nil, err
			}
			state = stateReadHeaders

		case stateReadHeaders:
			line, err := readLine(r, limits.maxHeaderBytes-headerBytes)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("%w: connection closed inside header block", ErrMalformed)
				}
				return nil, err
			}
			if line == "" {
				state = stateReadBody
				continue
			}
			headerBytes += len(line)
			if len(req.Headers) >= maxHeaderCount {
				return nil, fmt.Errorf("%w: too many headers", ErrMalformed)
			}
			name, value, ok := strings.Cut(line, ":")
			if !ok || name == "" {
				return nil, fmt.Errorf("%w: header line without colon", ErrMalformed)
			}
			req.Headers = append(req.Headers, Header{
				Name:  strings.TrimSpace(name),
				Value: strings.TrimSpace(value),
			})

		case stateReadBody:
			length, err := bodyLength(req, limits.maxBodyBytes)
			if err != nil {
				return nil, err
			}
			if length > 0 {
				body := make([]byte, length)
				if _, err := io.ReadFull(r, body); err != nil {
					return nil, fmt.Errorf("%w: body shorter than Content-Length", ErrMalformed)
				}
				req.Body = body
			}
			state = stateDone
		}
	}
	return req, nil
}

func parseRequestLine(req *Request, line string) error {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return fmt.Errorf("%w: request line %q", ErrMalformed, line)
	}
	method, path, proto := parts[0], parts[1], parts[2]
	if !supportedMethods[method] {
		return fmt.Errorf("%w: unsupported method %q", ErrMalformed, method)
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: path %q", ErrMalformed, path)
	}
	if !strings.HasPrefix(proto, "HTTP/1.") {
		return fmt.Errorf("%w: protocol %q", ErrMalformed, proto)
	}
	req.Method = method
	req.Path = path
	req.Proto = proto
	return nil
}

func bodyLength(req *Request, maxBody int) (int, error) {
	if enc, ok := req.Header("Transfer-Encoding"); ok && enc != "" {
		return 0, fmt.Errorf("%w: transfer encoding %q not supported", ErrMalformed, enc)
	}
	raw, ok := req.Header("Content-Length")
	if !ok {
		return 0, nil
	}
	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		return 0, fmt.Errorf("%w: Content-Length %q", ErrMalformed, raw)
	}
	if length > maxBody {
		return 0, fmt.Errorf("%w: body of %d bytes exceeds limit", ErrMalformed, length)
	}
	return length, nil
}

// readLine reads a single CRLF-terminated line, excluding the terminator.
func readLine(r *bufio.Reader, limit int) (string, error) {
	if limit <= 0 {
		return "", fmt.Errorf("%w: header block too large", ErrMalformed)
	}
	line, err := r.ReadString('\n')
	if len(line) > limit {
		return "", fmt.Errorf("%w: line exceeds %d bytes", ErrMalformed, limit)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return line, io.EOF
		}
		return "", err
	}
	if !strings.HasSuffix(line, "\r\n") {
		return "", fmt.Errorf("%w: line not terminated by CRLF", ErrMalformed)
	}
	return strings.TrimSuffix(line, "\r\n"), nil
}
