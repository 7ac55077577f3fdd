// Package remote implements pathstore.Repository against an external path
// storage service over HTTP.
//
// The service speaks a small JSON API:
//
//	POST /paths             {name, params, waypoints, user_email}
//	GET  /paths?limit=&email=  {items: [...]}
//	GET  /stats/overview    {paths_count, paths_last7_by_day, recent_paths}
//	GET  /health
package remote

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

	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/internal/resilience"
	"github.com/yimbot/missionplanner/pkg/sweep"
)

// ProviderName identifies the client in the resilience registry.
const ProviderName = "remote-path-store"

// getScanLimit is how many recent paths Get searches, the service's list cap.
const getScanLimit = pathstore.MaxListLimit

// resolveScanLimit is how many recent paths Create searches for the ID the
// service assigned.
const resolveScanLimit = 10

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the remote store client.
type ClientConfig struct {
	// BaseURL is the service root, e.g. http://paths:8000.
	BaseURL string

	// HTTPClient executes requests. If nil, a resilient client is created
	// and registered in Registry.
	HTTPClient HTTPDoer

	// Registry receives the default client for health reporting.
	Registry *resilience.Registry

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration
}

// Client is a remote path store.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new remote store client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout > 0 {
			rc.Timeout = cfg.Timeout
		}
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

type pathPayload struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name"`
	UserEmail *string          `json:"user_email"`
	Params    sweep.Params     `json:"params"`
	Waypoints []sweep.Waypoint `json:"waypoints"`
}

type pathItem struct {
	ID        flexID          `json:"id"`
	UserEmail *string         `json:"user_email"`
	Name      string          `json:"name"`
	Params    json.RawMessage `json:"params"`
	Waypoints json.RawMessage `json:"waypoints"`
	CreatedAt flexTime        `json:"created_at"`
}

// createResponse is the save acknowledgement. Services that echo the new
// row's ID set id; others answer {"ok": true, "count": n}.
type createResponse struct {
	ID flexID `json:"id"`
}

type listResponse struct {
	Items []pathItem `json:"items"`
}

type dayCount struct {
	Day   flexTime `json:"day"`
	Count int      `json:"cnt"`
}

type recentPath struct {
	ID        flexID   `json:"id"`
	Name      string   `json:"name"`
	CreatedAt flexTime `json:"created_at"`
	Points    int      `json:"points"`
}

type overviewResponse struct {
	PathsCount int          `json:"paths_count"`
	PathsLast7 []dayCount   `json:"paths_last7_by_day"`
	Recent     []recentPath `json:"recent_paths"`
}

// Create posts a path to the service and replaces rec.ID with the ID the
// service assigned. When the acknowledgement carries no ID, the newest paths
// are searched for the saved one; if it cannot be found rec.ID is cleared.
func (c *Client) Create(ctx context.Context, rec *pathstore.Record) error {
	waypoints := rec.Waypoints
	if waypoints == nil {
		waypoints = []sweep.Waypoint{}
	}
	body, err := json.Marshal(pathPayload{
		ID:        rec.ID,
		Name:      rec.Name,
		UserEmail: rec.UserEmail,
		Params:    rec.Params,
		Waypoints: waypoints,
	})
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/paths", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created createResponse
	if err := c.do(req, &created); err != nil {
		return err
	}
	if created.ID != "" {
		rec.ID = string(created.ID)
		return nil
	}
	return c.resolveID(ctx, rec)
}

// resolveID matches rec against the newest stored paths by name, params and
// waypoint count.
func (c *Client) resolveID(ctx context.Context, rec *pathstore.Record) error {
	email := ""
	if rec.UserEmail != nil {
		email = *rec.UserEmail
	}
	items, err := c.list(ctx, resolveScanLimit, email)
	if err != nil {
		return fmt.Errorf("resolve saved path id: %w", err)
	}

	rec.ID = ""
	for _, item := range items {
		stored := item.record()
		if stored.Name == rec.Name &&
			stored.Params == rec.Params &&
			len(stored.Waypoints) == len(rec.Waypoints) {
			rec.ID = stored.ID
			if !stored.CreatedAt.IsZero() {
				rec.CreatedAt = stored.CreatedAt
			}
			return nil
		}
	}
	return nil
}

// Get finds a path by ID among the most recent paths the service lists.
func (c *Client) Get(ctx context.Context, id string) (*pathstore.Record, error) {
	items, err := c.list(ctx, getScanLimit, "")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if string(item.ID) == id {
			return item.record(), nil
		}
	}
	return nil, pathstore.ErrPathNotFound
}

// List retrieves paths newest first.
func (c *Client) List(ctx context.Context, opts pathstore.ListOptions) ([]*pathstore.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = pathstore.DefaultListLimit
	}
	items, err := c.list(ctx, limit, opts.Email)
	if err != nil {
		return nil, err
	}

	records := make([]*pathstore.Record, 0, len(items))
	for _, item := range items {
		records = append(records, item.record())
	}
	return records, nil
}

func (c *Client) list(ctx context.Context, limit int, email string) ([]pathItem, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if email != "" {
		q.Set("email", email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/paths?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var resp listResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Stats reads the service's overview.
func (c *Client) Stats(ctx context.Context, opts pathstore.StatsOptions) (*pathstore.Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats/overview", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var resp overviewResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	stats := &pathstore.Stats{Total: resp.PathsCount}
	for _, d := range resp.PathsLast7 {
		stats.Daily = append(stats.Daily, pathstore.DayCount{Day: time.Time(d.Day), Count: d.Count})
	}
	for i, p := range resp.Recent {
		if i >= opts.Recent {
			break
		}
		stats.Recent = append(stats.Recent, pathstore.RecentPath{
			ID:        string(p.ID),
			Name:      p.Name,
			CreatedAt: time.Time(p.CreatedAt),
			Points:    p.Points,
		})
	}
	return stats, nil
}

// Ping calls the service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

// do executes req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: req.Method, Path: req.URL.Path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (item pathItem) record() *pathstore.Record {
	params := sweep.DefaultParams()
	if len(item.Params) > 0 {
		if err := json.Unmarshal(item.Params, &params); err != nil {
			params = sweep.DefaultParams()
		}
	}
	return &pathstore.Record{
		ID:        string(item.ID),
		Name:      item.Name,
		UserEmail: item.UserEmail,
		Params:    params,
		Waypoints: sweep.DecodeWaypoints(item.Waypoints),
		CreatedAt: time.Time(item.CreatedAt),
	}
}

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Ensure Client implements pathstore.Repository.
var _ pathstore.Repository = (*Client)(nil)
