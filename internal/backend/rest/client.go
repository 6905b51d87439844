// Package rest implements the service.Service interface over the task
// service's JSON HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"tasksync/internal/auth"
	"tasksync/internal/config"
	"tasksync/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = config.DefaultTimeout

	tasksPath = "/tasks/"
)

// Client implements service.Service using the task service's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// New creates a client for the configured base URL.
// Requests carry a bearer token when one is configured or stored by login.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	ts, err := auth.TokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	if ts != nil {
		// Create HTTP client with token source
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = cfg.API.Timeout

	c := NewWithHTTPClient(cfg.API.BaseURL, httpClient, logger)
	c.timeout = cfg.API.Timeout
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: APITimeout,
		logger:  logger,
	}
}

// SetTimeout changes the per-call timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

func taskPath(id int64, suffix string) string {
	return fmt.Sprintf("%s%d/%s", tasksPath, id, suffix)
}

// ListTasks returns the tasks matching query, newest first.
// Both a bare JSON array and a paginated {"results": [...]} body are accepted.
func (c *Client) ListTasks(ctx context.Context, query map[string]string) ([]service.Task, error) {
	const op = "list tasks"

	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, tasksPath, service.Values(query), nil, &raw); err != nil {
		return nil, err
	}

	tasks, err := decodeTaskList(raw)
	if err != nil {
		return nil, &service.RemoteError{Op: op, Message: "unexpected response body", Err: err}
	}
	return tasks, nil
}

func decodeTaskList(raw json.RawMessage) ([]service.Task, error) {
	trimmed := bytes.TrimSpace(raw)
	tasks := []service.Task{}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}

	var page struct {
		Results []service.Task `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results != nil {
		tasks = page.Results
	}
	return tasks, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, "get task", http.MethodGet, taskPath(id, ""), nil, nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask creates a task and returns it as stored remotely.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, "create task", http.MethodPost, tasksPath, nil, in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the writable fields of a task.
func (c *Client) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, "update task", http.MethodPut, taskPath(id, ""), nil, in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// PatchTask sends a partial update.
func (c *Client) PatchTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, "patch task", http.MethodPatch, taskPath(id, ""), nil, patch, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTaskStatus changes only the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status service.Status) (service.Task, error) {
	body := map[string]service.Status{"status": status}

	var task service.Task
	if err := c.do(ctx, "update status", http.MethodPatch, taskPath(id, "status/"), nil, body, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id, ""), nil, nil, nil)
}

// Stats returns the aggregate counts computed remotely.
func (c *Client) Stats(ctx context.Context) (service.Stats, error) {
	var stats service.Stats
	if err := c.do(ctx, "task stats", http.MethodGet, tasksPath+"stats/", nil, nil, &stats); err != nil {
		return service.Stats{}, err
	}
	return stats, nil
}

// BulkUpdateStatus sets the status of every listed task.
func (c *Client) BulkUpdateStatus(ctx context.Context, ids []int64, status service.Status) (service.BulkResult, error) {
	body := struct {
		TaskIDs []int64        `json:"task_ids"`
		Status  service.Status `json:"status"`
	}{ids, status}

	var res service.BulkResult
	if err := c.do(ctx, "bulk update", http.MethodPost, tasksPath+"bulk-update/", nil, body, &res); err != nil {
		return service.BulkResult{}, err
	}
	return res, nil
}

// do sends one request and decodes a 2xx JSON response into out.
// out may be nil to discard the body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	c.logger.Debug("request", "id", requestID, "method", method, "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "id", requestID, "err", err)
		return wrapError(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("response", "id", requestID, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapError(op, err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return wrapError(op, ctx.Err())
		}
		return &service.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "unexpected response body", Err: err}
	}
	return nil
}

// wrapError maps transport and HTTP failures to a service.RemoteError.
func wrapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		rerr := &service.RemoteError{
			Op:         op,
			StatusCode: gerr.Code,
			Message:    remoteMessage(gerr),
			Err:        gerr,
		}
		switch gerr.Code {
		case http.StatusNotFound:
			rerr.Err = service.ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			rerr.Err = service.ErrUnauthorized
		}
		return rerr
	}

	// Check for timeout
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &service.RemoteError{Op: op, Message: service.ErrTimeout.Error(), Err: service.ErrTimeout}
	}

	// Token refresh failures surface as *oauth2.RetrieveError
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return &service.RemoteError{Op: op, Message: service.ErrUnauthorized.Error(), Err: service.ErrUnauthorized}
	}

	return &service.RemoteError{Op: op, Err: err}
}

// remoteMessage extracts the most specific message from an error body.
// The service reports errors as {"detail": "..."}, {"error": "..."} or,
// for validation failures, an object mapping field names to messages.
func remoteMessage(gerr *googleapi.Error) string {
	if gerr.Message != "" {
		return gerr.Message
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal([]byte(gerr.Body), &body); err == nil && len(body) > 0 {
		for _, key := range []string{"detail", "error", "message"} {
			var s string
			if err := json.Unmarshal(body[key], &s); err == nil && s != "" {
				return s
			}
		}

		fields := make([]string, 0, len(body))
		for field := range body {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var parts []string
		for _, field := range fields {
			var msgs []string
			if err := json.Unmarshal(body[field], &msgs); err == nil && len(msgs) > 0 {
				parts = append(parts, field+": "+strings.Join(msgs, " "))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	if text := http.StatusText(gerr.Code); text != "" {
		return strings.ToLower(text)
	}
	return "request failed"
}
