package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/render"

	"garage-client/api"
	"garage-client/internal/session"
	"garage-client/pkg/response"
)

// Client talks to the Garage backend. Every authenticated call reads
// the bearer token from the session store first and refuses to touch
// the network when no one is signed in.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	log     *slog.Logger
}

func New(baseURL string, timeout time.Duration, sess *session.Store, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: sess,
		log:     log,
	}
}

type call struct {
	method         string
	path           string
	query          url.Values
	body           any
	authed         bool
	idempotencyKey string
}

func (c *Client) send(ctx context.Context, cl call) (*http.Response, error) {
	var token string
	if cl.authed {
		t, err := c.session.Token()
		if err != nil {
			return nil, err
		}
		token = t
	}

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, err
	}

	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cl.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", cl.idempotencyKey)
	}

	c.log.Debug("Backend request",
		slog.String("method", cl.method),
		slog.String("path", cl.path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errBody response.ErrorBody
		_ = render.DecodeJSON(resp.Body, &errBody)
		resp.Body.Close()
		return nil, &response.StatusError{Status: resp.StatusCode, Message: errBody.Message}
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}

	return render.DecodeJSON(resp.Body, out)
}

func (c *Client) doText(ctx context.Context, cl call) (string, error) {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(raw)), nil
}

// SignUp registers a new user; mechanics carry a workshop address.
func (c *Client) SignUp(ctx context.Context, req *api.SignUpRequest) error {
	const op = "client.SignUp"

	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/signup", body: req}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SignIn authenticates and stores the returned session, token included,
// so later calls can forward it.
func (c *Client) SignIn(ctx context.Context, req *api.SignInRequest) (*session.Session, error) {
	const op = "client.SignIn"

	var out api.SignInResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/signin", body: req}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess := &session.Session{
		UserID:      out.ID,
		Username:    out.Username,
		Email:       out.Email,
		Roles:       out.Roles,
		AccessToken: out.AccessToken,
	}

	if err := c.session.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sess, nil
}

// SignOut drops the stored session. The token is opaque and not
// invalidated server-side; forgetting it is all the client can do.
func (c *Client) SignOut(ctx context.Context) error {
	const op = "client.SignOut"

	if err := c.session.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
