package httpd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

var reasonPhrases = map[int]string{
	200: "OK",
	400: "Bad Request",
	404: "Not Found",
	429: "Too Many Requests",
	500: "Internal Server Error",
}

func reasonPhrase(status int) string {
	if phrase, ok := reasonPhrases[status]; ok {
		return phrase
	}
	return "Unknown"
}

// writeJSON serializes payload and writes a complete HTTP/1.1 response.
// Content-Length is taken from the encoded byte count so the client
// never under- or over-reads the body.
func writeJSON(w io.Writer, status int, closing bool, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		status = 500
		body = []byte(`{"error":"response encoding failed"}`)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", status, reasonPhrase(status))
	buf.WriteString("Content-Type: application/json\r\n")
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(body))
	if closing {
		buf.WriteString("Connection: close\r\n")
	} else {
		buf.WriteString("Connection: keep-alive\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(body)

	_, err = w.Write(buf.Bytes())
	return err
}

// writeError sends an error message body.
func writeError(w io.Writer, status int, closing bool, msg string) error {
	return writeJSON(w, status, closing, map[string]string{"error": msg})
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
