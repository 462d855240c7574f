package fetch

import (
	"net/http"
	"time"
)

// ClientOpt is a functional option for the Client type (http.Client wrapper).
type ClientOpt func(*Client)

// WithTimeout sets the .Timeout attribute of the wrapped http.Client.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(c *Client) {
		c.hc.Timeout = timeout
	}
}

// WithUserAgent overrides the browser string sent on every request.
func WithUserAgent(ua string) ClientOpt {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCustomTransport replaces the underlying http's transport with a custom one.
func WithCustomTransport(t http.RoundTripper) ClientOpt {
	return func(c *Client) {
		c.hc.Transport = t
	}
}

// WithHTTPClient replaces the wrapped http.Client entirely, used by tests to
// point the fetcher at a local server.
func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) {
		c.hc = hc
	}
}
