// Package client is the IntelliDetect REST API client.
//
// Every call attaches the stored bearer token, unwraps the {code, message, data}
// envelope, and on a 401 clears the session and asks the Navigator to show the
// login view.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intellidetect/dashboard/pkg/domain"
	"github.com/intellidetect/dashboard/pkg/session"
)

// DefaultTimeout is the overall deadline for a single request.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Navigator is told to show the login entry point after the server rejects the session.
type Navigator interface {
	RedirectToLogin()
}

type nopNavigator struct{}

func (nopNavigator) RedirectToLogin() {}

// Client is the IntelliDetect API client for one backend service.
type Client struct {
	baseURL    string
	store      session.Store
	navigator  Navigator
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithNavigator sets the navigator invoked on 401 responses.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithHTTPClient uses a copy of hc for requests. A zero Timeout on hc is
// replaced with DefaultTimeout; hc itself is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		if cp.Timeout <= 0 {
			cp.Timeout = DefaultTimeout
		}
		c.httpClient = &cp
	}
}

// WithTimeout sets the overall request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a new API client rooted at baseURL (for example
// "http://localhost:8080/api/v1") that reads its credential from store.
// A nil store is replaced with an empty in-memory one.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		store:     store,
		navigator: nopNavigator{},
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: zerolog.Nop(),
	}
	if c.store == nil {
		c.store = session.NewMemoryStore()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the session store the client reads its credential from.
func (c *Client) Store() session.Store {
	return c.store
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return requestError(fmt.Errorf("marshal body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return requestError(fmt.Errorf("create request: %w", err))
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return requestError(fmt.Errorf("unsupported scheme %q in %s", req.URL.Scheme, c.baseURL))
	}
	if req.URL.Host == "" {
		return requestError(fmt.Errorf("no host in %s", c.baseURL))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).
			Str("request_id", req.Header.Get("X-Request-ID")).Msg("request failed")
		return networkError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).Str("request_id", req.Header.Get("X-Request-ID")).
		Msg("request done")

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return networkError(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 400 {
		return c.statusError(resp.StatusCode, respBody)
	}

	var env domain.Envelope[json.RawMessage]
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: MsgServerError,
			Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if !env.OK() {
		return c.envelopeError(resp.StatusCode, env.Code, env.Message)
	}

	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Code: env.Code,
				Message: MsgServerError, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}

// authorize attaches the bearer token, if one is stored, and a request ID.
func (c *Client) authorize(req *http.Request) {
	req.Header.Set("X-Request-ID", uuid.New().String())
	if tok, ok := session.Token(c.store); ok && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

func (c *Client) statusError(status int, body []byte) error {
	msg := MsgServerError
	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}

	kind := KindServer
	if status == http.StatusUnauthorized {
		kind = KindUnauthorized
		c.expireSession()
	}
	return &Error{Kind: kind, StatusCode: status, Code: payload.Code, Message: msg}
}

// envelopeError handles a 2xx response whose envelope code signals failure.
// An envelope code of 401 is treated like an HTTP 401.
func (c *Client) envelopeError(status, code int, message string) error {
	if message == "" {
		message = MsgServerError
	}
	kind := KindServer
	if code == http.StatusUnauthorized {
		kind = KindUnauthorized
		c.expireSession()
	}
	return &Error{Kind: kind, StatusCode: status, Code: code, Message: message}
}

// expireSession clears the stored credential and sends the user to the login view.
func (c *Client) expireSession() {
	if err := session.Logout(c.store); err != nil {
		c.log.Error().Err(err).Msg("clear session after 401")
	}
	c.log.Warn().Str("service", c.baseURL).Msg("session rejected by server, redirecting to login")
	c.navigator.RedirectToLogin()
}
