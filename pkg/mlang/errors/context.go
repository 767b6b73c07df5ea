package errors

import (
	"bytes"
	"encoding/json"
)

// maxContextBytes bounds the node text attached to an error.
const maxContextBytes = 2048

// NodeContext formats raw node JSON for display in an error.
// Large nodes are truncated.
func NodeContext(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	text := buf.String()
	if len(text) > maxContextBytes {
		text = text[:maxContextBytes] + "\n..."
	}
	return text
}
