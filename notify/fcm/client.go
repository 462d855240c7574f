// Package fcm implements the push gateway against Firebase Cloud Messaging's
// HTTP v1 API, authenticated as a service account.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/courtwatch/courtwatch/notify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

var log = logrus.WithField("prefix", "fcm")

const (
	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"
	endpointFormat = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
	sendTimeout    = 10 * time.Second
)

// ErrUnregistered is returned when the gateway reports the device token is
// no longer valid. Callers can stop pushing to the device.
var ErrUnregistered = errors.New("device token is unregistered")

// Client sends push messages through FCM. It satisfies notify.Sender.
type Client struct {
	hc        *http.Client
	endpoint  string
	projectID string
}

// Opt customizes a client, mainly for tests.
type Opt func(*Client)

// WithEndpoint points the client at an alternate messages:send URL.
func WithEndpoint(endpoint string) Opt {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient replaces the OAuth-wrapped HTTP client.
func WithHTTPClient(hc *http.Client) Opt {
	return func(c *Client) { c.hc = hc }
}

// NewClientFromFile builds a client from a service-account JSON key file,
// the credential shape the Firebase console exports.
func NewClientFromFile(ctx context.Context, path string, opts ...Opt) (*Client, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- operator-supplied credential path
	if err != nil {
		return nil, errors.Wrap(err, "read service account file")
	}
	conf, err := google.JWTConfigFromJSON(raw, messagingScope)
	if err != nil {
		return nil, errors.Wrap(err, "parse service account file")
	}
	var meta struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "parse service account file")
	}
	if meta.ProjectID == "" {
		return nil, errors.New("service account file has no project_id")
	}
	return newClient(ctx, meta.ProjectID, conf.TokenSource(ctx), opts...), nil
}

// NewClient builds a client from the project id / client email / private key
// triple, the shape used when credentials arrive through the environment.
func NewClient(ctx context.Context, projectID, clientEmail, privateKey string, opts ...Opt) (*Client, error) {
	if projectID == "" || clientEmail == "" || privateKey == "" {
		return nil, errors.New("fcm credentials require project id, client email and private key")
	}
	conf := &jwt.Config{
		Email:      clientEmail,
		PrivateKey: []byte(normalizePrivateKey(privateKey)),
		Scopes:     []string{messagingScope},
		TokenURL:   google.JWTTokenURL,
	}
	return newClient(ctx, projectID, conf.TokenSource(ctx), opts...), nil
}

func newClient(ctx context.Context, projectID string, ts oauth2.TokenSource, opts ...Opt) *Client {
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = sendTimeout
	c := &Client{
		hc:        hc,
		endpoint:  fmt.Sprintf(endpointFormat, projectID),
		projectID: projectID,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// normalizePrivateKey restores real newlines in keys that traveled through
// environment variables with escaped ones.
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	Token        string               `json:"token"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Data         map[string]string    `json:"data,omitempty"`
	Android      *androidConfig       `json:"android,omitempty"`
}

type androidConfig struct {
	Priority string `json:"priority,omitempty"`
}

// Send pushes one message to a device token. Court alerts are time
// sensitive, so every message requests high delivery priority.
func (c *Client) Send(ctx context.Context, token string, n notify.Notification, data map[string]string) error {
	body, err := json.Marshal(sendRequest{Message: message{
		Token:        token,
		Notification: &n,
		Data:         data,
		Android:      &androidConfig{Priority: "high"},
	}})
	if err != nil {
		return errors.Wrap(err, "marshal fcm message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build fcm request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "post fcm message")
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrUnregistered
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("fcm responded %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
}

func closeBody(r *http.Response) {
	if err := r.Body.Close(); err != nil {
		log.WithError(err).Debug("Could not close response body")
	}
}
