// Package apiclient is the HTTP gateway to the inventory API. Every call takes
// the caller's session explicitly and converts failures into the apperr
// taxonomy.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/session"
)

// Client performs authenticated calls against one API base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client. A nil hc uses http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Login exchanges credentials for a token and resolves the identity behind it.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return session.Session{}, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &tok); err != nil {
		return session.Session{}, err
	}
	sess := session.Session{Token: tok.AccessToken}
	id, err := c.Me(ctx, sess)
	if err != nil {
		return session.Session{}, err
	}
	sess.Identity = id
	return sess, nil
}

// Me returns the identity behind the session's token.
func (c *Client) Me(ctx context.Context, sess session.Session) (session.Identity, error) {
	var u models.User
	if err := c.call(ctx, sess, http.MethodGet, "/me", nil, &u); err != nil {
		return session.Identity{}, err
	}
	return session.Identity{ID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// List fetches the full collection of resource.
func (c *Client) List(ctx context.Context, sess session.Session, resource string) ([]listengine.Record, error) {
	var raw any
	if err := c.call(ctx, sess, http.MethodGet, "/"+resource, nil, &raw); err != nil {
		return nil, err
	}
	return listengine.Normalize(raw), nil
}

// Create submits a new record and returns the server's copy.
func (c *Client) Create(ctx context.Context, sess session.Session, resource string, fields map[string]any) (listengine.Record, error) {
	if !sess.Authenticated() {
		return nil, apperr.ErrUnauthenticated
	}
	var out map[string]any
	if err := c.call(ctx, sess, http.MethodPost, "/"+resource, fields, &out); err != nil {
		return nil, err
	}
	return listengine.Record(out), nil
}

// Update submits changed fields of record id and returns the server's copy.
func (c *Client) Update(ctx context.Context, sess session.Session, resource string, id int64, fields map[string]any) (listengine.Record, error) {
	if !sess.Authenticated() {
		return nil, apperr.ErrUnauthenticated
	}
	var out map[string]any
	if err := c.call(ctx, sess, http.MethodPut, "/"+resource+"/"+strconv.FormatInt(id, 10), fields, &out); err != nil {
		return nil, err
	}
	return listengine.Record(out), nil
}

// Delete removes record id.
func (c *Client) Delete(ctx context.Context, sess session.Session, resource string, id int64) error {
	if !sess.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	return c.call(ctx, sess, http.MethodDelete, "/"+resource+"/"+strconv.FormatInt(id, 10), nil, nil)
}

// Stats fetches the dashboard counters.
func (c *Client) Stats(ctx context.Context, sess session.Session) (models.Stats, error) {
	var st models.Stats
	err := c.call(ctx, sess, http.MethodGet, "/stats", nil, &st)
	return st, err
}

func (c *Client) call(ctx context.Context, sess session.Session, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", apperr.ErrTransport, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", apperr.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.FromStatus(resp.StatusCode, parseDetail(data))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// parseDetail extracts the "detail" of an error body. Non-string details
// (validation error lists) are returned as raw JSON; non-JSON bodies as text.
func parseDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(data))
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}
