// Package client is the Go API client with an identity-keyed response
// cache. Cached entries are keyed by (resource, identity id, authenticated
// flag), and any identity change drops the cache outright, so stale
// cross-identity data is never returned, even transiently.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"taskpilot/internal/model"
)

// Resource names used as cache keys.
const (
	resourceTasks  = "tasks"
	resourceEvents = "timeline"
)

type cacheKey struct {
	resource      string
	identityID    string
	authenticated bool
}

// Client wraps the REST API with per-identity caching of list responses.
type Client struct {
	baseURL string
	http    *http.Client

	mu            sync.Mutex
	identityID    string
	authenticated bool
	bearerToken   string
	cache         map[cacheKey]interface{}
}

// New creates a client for the API at baseURL. httpClient may be nil to
// use http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		cache:   make(map[cacheKey]interface{}),
	}
}

// SetIdentity switches the active identity (login, logout, signup, account
// switch). The cache is invalidated wholesale; subsequent reads refetch.
func (c *Client) SetIdentity(id string, authenticated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identityID == id && c.authenticated == authenticated {
		return
	}
	c.identityID = id
	c.authenticated = authenticated
	c.cache = make(map[cacheKey]interface{})
}

// SetBearerToken attaches a provider credential to subsequent requests.
func (c *Client) SetBearerToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearerToken = token
}

// Tasks returns the caller's tasks, served from cache when the identity
// has not changed since the last fetch.
func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	key := c.keyFor(resourceTasks)

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		tasks := cached.([]model.Task)
		c.mu.Unlock()
		return tasks, nil
	}
	c.mu.Unlock()

	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Only cache if the identity is still the one we fetched for.
	if key == c.keyForLocked(resourceTasks) {
		c.cache[key] = tasks
	}
	c.mu.Unlock()
	return tasks, nil
}

// Events returns the caller's timeline events, cached per identity.
func (c *Client) Events(ctx context.Context) ([]model.TimelineEvent, error) {
	key := c.keyFor(resourceEvents)

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		events := cached.([]model.TimelineEvent)
		c.mu.Unlock()
		return events, nil
	}
	c.mu.Unlock()

	var events []model.TimelineEvent
	if err := c.do(ctx, http.MethodGet, "/api/timeline", nil, &events); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if key == c.keyForLocked(resourceEvents) {
		c.cache[key] = events
	}
	c.mu.Unlock()
	return events, nil
}

// CreateTask creates a task and invalidates the task cache.
func (c *Client) CreateTask(ctx context.Context, body interface{}) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", body, &task); err != nil {
		return nil, err
	}
	c.invalidate(resourceTasks)
	return &task, nil
}

// UpdateTask applies a partial update and invalidates the task cache.
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, patch, &task); err != nil {
		return nil, err
	}
	c.invalidate(resourceTasks)
	return &task, nil
}

// DeleteTask removes a task and invalidates the task cache.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil); err != nil {
		return err
	}
	c.invalidate(resourceTasks)
	return nil
}

// ArchiveTask archives a task and invalidates the task cache.
func (c *Client) ArchiveTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks/"+id+"/archive", nil, &task); err != nil {
		return nil, err
	}
	c.invalidate(resourceTasks)
	return &task, nil
}

// CreateEvent creates a timeline event and invalidates the event cache.
func (c *Client) CreateEvent(ctx context.Context, body interface{}) (*model.TimelineEvent, error) {
	var event model.TimelineEvent
	if err := c.do(ctx, http.MethodPost, "/api/timeline", body, &event); err != nil {
		return nil, err
	}
	c.invalidate(resourceEvents)
	return &event, nil
}

// TransferData triggers the best-effort ownership transfer retry endpoint.
func (c *Client) TransferData(ctx context.Context, anonymousUID, permanentUID string) error {
	body := map[string]string{
		"anonymousUid": anonymousUID,
		"permanentUid": permanentUID,
	}
	return c.do(ctx, http.MethodPost, "/api/auth/transfer-data", body, nil)
}

func (c *Client) keyFor(resource string) cacheKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyForLocked(resource)
}

func (c *Client) keyForLocked(resource string) cacheKey {
	return cacheKey{
		resource:      resource,
		identityID:    c.identityID,
		authenticated: c.authenticated,
	}
}

func (c *Client) invalidate(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.cache {
		if key.resource == resource {
			delete(c.cache, key)
		}
	}
}

// do executes a JSON request and decodes the response into out (when
// non-nil). Non-2xx statuses become errors carrying the server message.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	token := c.bearerToken
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
