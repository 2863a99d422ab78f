package schoolapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
)

const defaultTimeout = 30 * time.Second

var errMissingID = errors.New("id is required")

// Error is a non-2xx answer of the school API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return "school api: " + http.StatusText(e.StatusCode) + ": " + e.Message
}

// UserMessage is the text the backend meant for the user.
func (e *Error) UserMessage() string { return e.Message }

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, code int) bool {
	apiErr, ok := errors.Cause(err).(*Error)
	return ok && apiErr.StatusCode == code
}

// Retryable reports whether repeating the request could succeed. An answer about
// the session or its rights stays the same on a second try.
func Retryable(err error) bool {
	return !IsStatus(err, http.StatusUnauthorized) && !IsStatus(err, http.StatusForbidden)
}

func newError(code int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &Error{StatusCode: code, Message: msg}
}

// Session provides the bearer token and is told when the backend rejects it.
type Session interface {
	Token() string
	HandleUnauthorized()
}

type staticToken string

func (t staticToken) Token() string     { return string(t) }
func (t staticToken) HandleUnauthorized() {}

// Client talks JSON to the school API.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
	log     core.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(log core.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     core.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of c sending the token of s.
func (c *Client) WithSession(s Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Auth() *AuthAPI { return &AuthAPI{c: c} }

func (c *Client) token() string {
	if c.session == nil {
		return ""
	}
	return c.session.Token()
}

// do sends in as JSON and returns the raw response body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newError(resp.StatusCode, data)
		c.log.Debug("school api error", map[string]interface{}{
			"method": method, "path": path, "status": resp.StatusCode, "message": apiErr.Message,
		})
		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.session != nil {
			c.session.HandleUnauthorized()
		}
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	data, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "decoding %s %s", method, path)
}

// Ping checks that the API answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.WithSession(nil).do(ctx, http.MethodGet, "/", nil)
	return err
}
