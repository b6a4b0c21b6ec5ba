// Package api is the HTTP client for the handla server. It translates HTTP
// status codes into the remote error taxonomy so callers never inspect
// responses themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/hnordin/handla/internal/lifecycle"
	"github.com/hnordin/handla/internal/remote"
)

// Client talks to one handla server. The session cookie set by Login or
// Register is carried automatically by the cookie jar.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *Client) Register(ctx context.Context, email, name, password string) (*User, error) {
	body := map[string]string{"email": email, "name": name, "password": password}
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Catalog(ctx context.Context) ([]CategoryWithItems, error) {
	var categories []CategoryWithItems
	if err := c.get(ctx, "/api/catalog", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCatalogItem(ctx context.Context, req CreateCatalogItemRequest) (*CatalogItem, error) {
	var item CatalogItem
	if err := c.do(ctx, http.MethodPost, "/api/catalog/items", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteCatalogItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/catalog/items/%d", id), nil, nil)
}

func (c *Client) CreateList(ctx context.Context, name string, items []NewListItem) (*List, error) {
	body := map[string]any{"name": name, "items": items}
	var list List
	if err := c.do(ctx, http.MethodPost, "/api/lists", body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) Lists(ctx context.Context) ([]ListSummary, error) {
	var lists []ListSummary
	if err := c.get(ctx, "/api/lists", &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) ListByID(ctx context.Context, id int64) (*List, error) {
	var list List
	if err := c.get(ctx, fmt.Sprintf("/api/lists/%d", id), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CurrentListID returns the id of the caller's current list, nil when no
// list is current.
func (c *Client) CurrentListID(ctx context.Context) (*int64, error) {
	var resp struct {
		ID *int64 `json:"id"`
	}
	if err := c.get(ctx, "/api/lists/current-id", &resp); err != nil {
		return nil, err
	}
	return resp.ID, nil
}

func (c *Client) ToggleListItem(ctx context.Context, id int64, checked bool) (*ListItem, error) {
	body := map[string]bool{"checked": checked}
	var item ListItem
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/list-items/%d", id), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateListName(ctx context.Context, id int64, name string) (*List, error) {
	body := map[string]string{"name": name}
	var list List
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/lists/%d/name", id), body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ChangeListStatus transitions the caller's current list.
func (c *Client) ChangeListStatus(ctx context.Context, to lifecycle.Status) (*List, error) {
	body := map[string]string{"status": string(to)}
	var list List
	if err := c.do(ctx, http.MethodPost, "/api/lists/status", body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) TopItems(ctx context.Context) ([]UsageRank, error) {
	var ranks []UsageRank
	if err := c.get(ctx, "/api/statistics/top-items", &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

func (c *Client) TopCategories(ctx context.Context) ([]UsageRank, error) {
	var ranks []UsageRank
	if err := c.get(ctx, "/api/statistics/top-categories", &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

func (c *Client) MonthlyTimeline(ctx context.Context) ([]MonthlyUsage, error) {
	var points []MonthlyUsage
	if err := c.get(ctx, "/api/statistics/timeline", &points); err != nil {
		return nil, err
	}
	return points, nil
}

// get issues a GET with retries on transient failures. Reads are the only
// requests retried; a write that timed out may have been applied, and the
// caller reconciles that through its cache instead.
func (c *Client) get(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if remote.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	u := c.baseURL.JoinPath(path)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, remote.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps an error response onto the remote taxonomy, keeping the
// server's message where it has one.
func (c *Client) statusError(method, path string, resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return &remote.ValidationError{Message: msg}
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w: %s", method, path, remote.ErrUnauthorized, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w: %s", method, path, remote.ErrNotFound, msg)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: %w: %s", method, path, remote.ErrConflict, msg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s %s: %w: %s", method, path, remote.ErrUnavailable, msg)
	default:
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, msg)
	}
}
