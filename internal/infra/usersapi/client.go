package usersapi

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

	"github.com/ivankudzin/swipedeck/internal/domain/model"
	"github.com/ivankudzin/swipedeck/internal/infra/httpclient"
)

const (
	usersPath  = "/users"
	swipesPath = "/swipes"

	// DefaultSelect is the field projection the deck renders.
	DefaultSelect = "firstName,image,id"

	maxErrorBody = 512
)

var ErrUnexpectedStatus = errors.New("unexpected users api status")

// StatusError carries the non-2xx status returned by the users API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("users api responded %d", e.StatusCode)
	}
	return fmt.Sprintf("users api responded %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Select  string
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	selectExpr string
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("users api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse users api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("users api base url must be absolute: %q", raw)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	selectExpr := strings.TrimSpace(cfg.Select)
	if selectExpr == "" {
		selectExpr = DefaultSelect
	}

	return &Client{
		baseURL:    base,
		httpClient: httpclient.New(cfg.Timeout),
		selectExpr: selectExpr,
	}, nil
}

type usersPageResponse struct {
	Users []model.User `json:"users"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

// FetchUsers requests one page of profiles starting at skip.
func (c *Client) FetchUsers(ctx context.Context, limit, skip int) (model.UsersPage, error) {
	if limit <= 0 {
		return model.UsersPage{}, fmt.Errorf("limit must be positive")
	}
	if skip < 0 {
		return model.UsersPage{}, fmt.Errorf("skip must not be negative")
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skip", strconv.Itoa(skip))
	query.Set("select", c.selectExpr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(usersPath, query), nil)
	if err != nil {
		return model.UsersPage{}, fmt.Errorf("build users request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.UsersPage{}, fmt.Errorf("fetch users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.UsersPage{}, statusError(resp)
	}

	var payload usersPageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.UsersPage{}, fmt.Errorf("decode users page: %w", err)
	}
	if payload.Users == nil {
		payload.Users = []model.User{}
	}

	return model.UsersPage{
		Users: payload.Users,
		Total: payload.Total,
		Skip:  payload.Skip,
		Limit: payload.Limit,
	}, nil
}

type swipeRequest struct {
	ID           string `json:"id"`
	SessionID    string `json:"session_id"`
	TargetUserID int64  `json:"target_user_id"`
	Direction    string `json:"direction"`
	Action       string `json:"action"`
	CreatedAt    string `json:"created_at"`
}

// PostSwipe records a decision with the users API.
func (c *Client) PostSwipe(ctx context.Context, swipe model.Swipe) error {
	body, err := json.Marshal(swipeRequest{
		ID:           swipe.ID,
		SessionID:    swipe.SessionID,
		TargetUserID: swipe.TargetUserID,
		Direction:    string(swipe.Direction),
		Action:       string(swipe.Action),
		CreatedAt:    swipe.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encode swipe: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(swipesPath, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build swipe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if swipe.ID != "" {
		req.Header.Set("Idempotency-Key", swipe.ID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post swipe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}
