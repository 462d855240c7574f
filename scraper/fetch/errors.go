package fetch

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrMalformedHostname is returned when a board endpoint cannot be parsed
// into a usable URL.
var ErrMalformedHostname = errors.New("could not parse a board endpoint from the given value")

// ErrNotOK is a sentinel wrapped by every unexpected-status error, so callers
// can detect upstream refusals without string matching.
var ErrNotOK = errors.New("did not receive an acceptable response from the board")

// unexpectedStatusErr formats an upstream refusal around the ErrNotOK
// sentinel.
func unexpectedStatusErr(r *http.Response) error {
	return errors.Wrap(ErrNotOK, fmt.Sprintf("url=%s, status=%d", r.Request.URL, r.StatusCode))
}
