// Package fetch performs the two-request scrape cycle against the courthouse
// streaming board: the JSON XHR endpoint guarded by conditional-request
// headers, then the board page HTML when the data has moved.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/courtwatch/courtwatch/config/features"
	"github.com/courtwatch/courtwatch/config/params"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "fetch")

// Row is one court entry from the XHR payload. Field names follow the
// upstream JSON keys.
type Row struct {
	CourtCode string `json:"courtcode"`
	CaseInfo  string `json:"caseinfo"`
	GSrNo     string `json:"gsrno"`
}

// Result is the outcome of one fetch cycle. When NotModified is set the
// upstream answered 304 and Rows/PageHTML are empty.
type Result struct {
	Rows        []Row
	PageHTML    string
	NotModified bool
}

// Client is a wrapper object around the HTTP client holding the board
// endpoints and the conditional-request state carried between ticks.
type Client struct {
	hc        *http.Client
	baseURL   *url.URL
	xhrURL    *url.URL
	userAgent string

	// Conditional-request state, mutated only by the single tick in flight.
	lastETag     string
	lastModified string
}

// NewClient constructs a new client for the given board page and XHR
// endpoints with the provided options (ex WithTimeout).
func NewClient(baseURL, xhrURL string, opts ...ClientOpt) (*Client, error) {
	bu, err := urlForEndpoint(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, baseURL)
	}
	xu, err := urlForEndpoint(xhrURL)
	if err != nil {
		return nil, errors.Wrap(err, xhrURL)
	}
	c := &Client{
		hc:        &http.Client{Timeout: params.BoardConfig().FetchTimeout},
		baseURL:   bu,
		xhrURL:    xu,
		userAgent: params.BoardConfig().UserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func urlForEndpoint(e string) (*url.URL, error) {
	u, err := url.Parse(e)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return nil, ErrMalformedHostname
	}
	return u, nil
}

// BaseURL returns the board page url of the client.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// Fetch runs one scrape cycle. On a 200 XHR response it records the fresh
// ETag and Last-Modified values, decodes the rows, and downloads the page
// HTML; on a 304 it short-circuits with NotModified so the tick skips all
// downstream work.
func (c *Client) Fetch(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.xhrURL.String(), nil)
	if err != nil {
		return nil, err
	}
	c.setCommonHeaders(req)
	if !features.Get().DisableConditionalRequests {
		if c.lastETag != "" {
			req.Header.Set("If-None-Match", c.lastETag)
		}
		if c.lastModified != "" {
			req.Header.Set("If-Modified-Since", c.lastModified)
		}
	}

	r, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "board data request failed")
	}
	defer closeBody(r)

	switch r.StatusCode {
	case http.StatusNotModified:
		return &Result{NotModified: true}, nil
	case http.StatusOK:
	default:
		return nil, unexpectedStatusErr(r)
	}

	if et := r.Header.Get("ETag"); et != "" {
		c.lastETag = et
	}
	if lm := r.Header.Get("Last-Modified"); lm != "" {
		c.lastModified = lm
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading board data response body")
	}
	rows, err := decodeRows(body)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding board data payload")
	}

	page, err := c.fetchPage(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: rows, PageHTML: page}, nil
}

func (c *Client) fetchPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), nil)
	if err != nil {
		return "", err
	}
	c.setCommonHeaders(req)

	r, err := c.hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "board page request failed")
	}
	defer closeBody(r)
	if r.StatusCode != http.StatusOK {
		return "", unexpectedStatusErr(r)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", errors.Wrap(err, "error reading board page body")
	}
	return string(body), nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
}

// decodeRows unwraps the XHR payload. The upstream serves either a plain
// JSON array or a JSON string whose contents are the array; an empty string
// means an empty board.
func decodeRows(body []byte) ([]Row, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return []Row{}, nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, err
		}
		trimmed = strings.TrimSpace(inner)
		if trimmed == "" {
			return []Row{}, nil
		}
	}
	rows := make([]Row, 0)
	if err := json.Unmarshal([]byte(trimmed), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func closeBody(r *http.Response) {
	if err := r.Body.Close(); err != nil {
		log.WithError(err).Debug("Could not close response body")
	}
}
