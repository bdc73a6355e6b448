// Package apiclient talks to the entity store's REST surface. Every non-2xx
// answer is turned back into the apperror kind the server reported, and a
// transport failure becomes apperror.ErrUnavailable.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"
	DefaultTimeout = 5 * time.Second
)

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL, e.g. http://localhost:3001/api.
// A nil httpClient gets one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// AuthResponse is the body of signup and login.
type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) ListThreads(ctx context.Context) ([]model.Thread, error) {
	var out []model.Thread
	if err := c.do(ctx, http.MethodGet, "/threads", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateThread(ctx context.Context, in model.NewThread) (*model.Thread, error) {
	var out model.Thread
	if err := c.do(ctx, http.MethodPost, "/threads", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSuggestions(ctx context.Context) ([]model.Suggestion, error) {
	var out []model.Suggestion
	if err := c.do(ctx, http.MethodGet, "/suggestions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSuggestion(ctx context.Context, in model.NewSuggestion) (*model.Suggestion, error) {
	var out model.Suggestion
	if err := c.do(ctx, http.MethodPost, "/suggestions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upvote(ctx context.Context, id string) (*model.Suggestion, error) {
	var out model.Suggestion
	path := "/suggestions/" + url.PathEscape(id) + "/upvote"
	if err := c.do(ctx, http.MethodPatch, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account for userID.
func (c *Client) Me(ctx context.Context, userID string) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me?userId="+url.QueryEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, apperror.NotFound("user", userID)
	}
	return out.User, nil
}

// Search goes through the server-side search proxy.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Track, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var out []model.Track
	if err := c.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("apiclient: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Unavailable("entity store", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Unavailable("entity store", fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// decodeError rebuilds the server's error. The code in the body wins over
// the status, since Validation and Conflict share 400.
func decodeError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &eb)

	msg := eb.Error
	if msg == "" {
		msg = fmt.Sprintf("entity store answered %d", resp.StatusCode)
	}

	kind := kindFromCode(eb.Code)
	if kind == nil {
		kind = kindFromStatus(resp.StatusCode)
	}
	if errors.Is(kind, apperror.ErrUnavailable) {
		return apperror.Unavailable("entity store", errors.New(msg))
	}
	return apperror.New(kind, msg)
}

func kindFromCode(code string) error {
	switch code {
	case "validation_error":
		return apperror.ErrValidation
	case "conflict":
		return apperror.ErrConflict
	case "unauthorized":
		return apperror.ErrUnauthorized
	case "not_found":
		return apperror.ErrNotFound
	case "unavailable", "internal_error":
		return apperror.ErrUnavailable
	}
	return nil
}

func kindFromStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return apperror.ErrNotFound
	case status == http.StatusUnauthorized:
		return apperror.ErrUnauthorized
	case status == http.StatusConflict:
		return apperror.ErrConflict
	case status >= 400 && status < 500:
		return apperror.ErrValidation
	default:
		return apperror.ErrUnavailable
	}
}
