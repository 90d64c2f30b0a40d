package preloader

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tandemview/tandem/internal/errors"
)

// Bootstrap is the state the document shell embeds for the client: the split
// points the server render pass recorded and the request headers it saw.
type Bootstrap struct {
	SplitPoints []string    `json:"splitPoints"`
	Headers     http.Header `json:"headers,omitempty"`
}

// EncodeBootstrap serializes bootstrap state for embedding in the document.
// encoding/json escapes angle brackets, so the output is safe inside a
// script element.
func EncodeBootstrap(splitPoints []string, headers http.Header) ([]byte, error) {
	if splitPoints == nil {
		splitPoints = []string{}
	}
	b := Bootstrap{SplitPoints: splitPoints, Headers: copyHeaders(headers)}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encoding bootstrap state: %w", err)
	}
	return data, nil
}

// ParseBootstrap reads the state embedded by the document shell.
func ParseBootstrap(data []byte) (*Bootstrap, error) {
	var b Bootstrap
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing bootstrap state: %w", err)
	}
	if b.SplitPoints == nil {
		return nil, errors.BuildDefect("bootstrap state is missing splitPoints")
	}
	return &b, nil
}

// copyHeaders snapshots headers so later mutation by the request handler
// cannot leak into the embedded state. A nil input stays nil so the field is
// omitted.
func copyHeaders(headers http.Header) http.Header {
	if headers == nil {
		return nil
	}
	copied := make(http.Header, len(headers))
	for k, values := range headers {
		vs := make([]string, len(values))
		copy(vs, values)
		copied[k] = vs
	}
	return copied
}
