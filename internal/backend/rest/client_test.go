package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/backend/rest"
	"tasksync/internal/config"
	"tasksync/internal/service"
)

const taskJSON = `{
	"id": 7,
	"title": "Buy milk",
	"description": "",
	"priority": "high",
	"status": "pending",
	"due_date": null,
	"created_at": "2024-03-01T10:00:00Z",
	"updated_at": "2024-03-01T10:00:00Z",
	"completed_at": null
}`

type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// newServer starts a server answering every request with status and body,
// recording what it received.
func newServer(t *testing.T, status int, body string) (*rest.Client, *[]recorded) {
	t.Helper()
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   data,
		})
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return rest.NewWithHTTPClient(srv.URL+"/api/", srv.Client(), nil), &reqs
}

func TestListTasks_EncodesOnlySetFilters(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK, "["+taskJSON+"]")

	query := service.FilterSet{Status: service.StatusCompleted}.Query()
	tasks, err := c.ListTasks(context.Background(), query)
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/tasks/", got.Path)
	assert.Equal(t, "status=completed", got.Query)

	require.Len(t, tasks, 1)
	assert.Equal(t, int64(7), tasks[0].ID)
	assert.Equal(t, service.PriorityHigh, tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)
}

func TestListTasks_NoFiltersSendsNoQuery(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK, "[]")

	tasks, err := c.ListTasks(context.Background(), service.FilterSet{}.Query())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.Empty(t, (*reqs)[0].Query)
}

func TestListTasks_PaginatedEnvelope(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{"count": 1, "next": null, "results": [`+taskJSON+`]}`)

	tasks, err := c.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
}

func TestRequestHeaders(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK, taskJSON)

	_, err := c.GetTask(context.Background(), 7)
	require.NoError(t, err)
	_, err = c.GetTask(context.Background(), 7)
	require.NoError(t, err)

	first, second := (*reqs)[0], (*reqs)[1]
	assert.Equal(t, "/api/tasks/7/", first.Path)
	assert.Equal(t, "application/json, text/plain, */*", first.Header.Get("Accept"))
	assert.Equal(t, "XMLHttpRequest", first.Header.Get("X-Requested-With"))
	assert.Empty(t, first.Header.Get("Content-Type"))

	id, err := uuid.Parse(first.Header.Get("X-Request-ID"))
	require.NoError(t, err)
	assert.NotEqual(t, id.String(), second.Header.Get("X-Request-ID"))
}

func TestCreateTask_SendsBody(t *testing.T) {
	c, reqs := newServer(t, http.StatusCreated, taskJSON)

	in := service.NewTaskInput("Buy milk")
	in.Priority = service.PriorityHigh
	task, err := c.CreateTask(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), task.ID)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/tasks/", got.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.JSONEq(t,
		`{"title":"Buy milk","description":"","priority":"high","status":"pending","due_date":null}`,
		string(got.Body))
}

func TestUpdateTask_UsesPut(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK, taskJSON)

	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	in := service.NewTaskInput("Buy milk")
	in.DueDate = &due
	_, err := c.UpdateTask(context.Background(), 7, in)
	require.NoError(t, err)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/api/tasks/7/", got.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.Body, &body))
	assert.Equal(t, "2024-03-05T00:00:00Z", body["due_date"])
}

func TestUpdateTaskStatus_PatchesStatusEndpoint(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK, taskJSON)

	_, err := c.UpdateTaskStatus(context.Background(), 7, service.StatusInProgress)
	require.NoError(t, err)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPatch, got.Method)
	assert.Equal(t, "/api/tasks/7/status/", got.Path)
	assert.JSONEq(t, `{"status":"in_progress"}`, string(got.Body))
}

func TestPatchTask_SendsOnlySetFields(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK, taskJSON)

	title := "Buy oat milk"
	_, err := c.PatchTask(context.Background(), 7, service.TaskPatch{Title: &title, ClearDueDate: true})
	require.NoError(t, err)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPatch, got.Method)
	assert.Equal(t, "/api/tasks/7/", got.Path)
	assert.JSONEq(t, `{"title":"Buy oat milk","due_date":null}`, string(got.Body))
}

func TestDeleteTask_NoContent(t *testing.T) {
	c, reqs := newServer(t, http.StatusNoContent, "")

	require.NoError(t, c.DeleteTask(context.Background(), 42))
	assert.Equal(t, http.MethodDelete, (*reqs)[0].Method)
	assert.Equal(t, "/api/tasks/42/", (*reqs)[0].Path)
}

func TestStats(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK, `{
		"total_tasks": 4,
		"status_breakdown": {"pending": 2, "in_progress": 1, "completed": 1},
		"priority_breakdown": {"high": 1, "medium": 2, "low": 1},
		"completion_rate": 25.0
	}`)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/tasks/stats/", (*reqs)[0].Path)
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 2, stats.StatusBreakdown[service.StatusPending])
	assert.Equal(t, 2, stats.PriorityBreakdown[service.PriorityMedium])
	assert.InDelta(t, 25.0, stats.CompletionRate, 0.001)
}

func TestBulkUpdateStatus(t *testing.T) {
	c, reqs := newServer(t, http.StatusOK,
		`{"message": "2 tasks updated", "updated_count": 2, "requested_count": 3}`)

	res, err := c.BulkUpdateStatus(context.Background(), []int64{1, 2, 99}, service.StatusCompleted)
	require.NoError(t, err)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/tasks/bulk-update/", got.Path)
	assert.JSONEq(t, `{"task_ids":[1,2,99],"status":"completed"}`, string(got.Body))
	assert.Equal(t, service.BulkResult{Message: "2 tasks updated", UpdatedCount: 2, RequestedCount: 3}, res)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		wantMsg  string
	}{
		{"not found", 404, `{"detail": "Not found."}`, service.ErrNotFound, "get task: Not found. (HTTP 404)"},
		{"unauthorized", 401, `{"detail": "Invalid token."}`, service.ErrUnauthorized, "get task: Invalid token. (HTTP 401)"},
		{"forbidden", 403, ``, service.ErrUnauthorized, "get task: forbidden (HTTP 403)"},
		{"error key", 500, `{"error": "stats failed"}`, nil, "get task: stats failed (HTTP 500)"},
		{"field errors", 400, `{"title": ["This field may not be blank."], "priority": ["Invalid."]}`, nil,
			"get task: priority: Invalid.; title: This field may not be blank. (HTTP 400)"},
		{"plain text", 502, `Bad Gateway`, nil, "get task: bad gateway (HTTP 502)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newServer(t, tt.status, tt.body)

			_, err := c.GetTask(context.Background(), 1)
			require.Error(t, err)

			var rerr *service.RemoteError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.status, rerr.StatusCode)
			assert.Equal(t, tt.wantMsg, err.Error())
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := rest.NewWithHTTPClient(srv.URL, srv.Client(), nil)
	c.SetTimeout(50 * time.Millisecond)

	_, err := c.ListTasks(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrTimeout)
	assert.Equal(t, "list tasks: request timed out", err.Error())
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := rest.NewWithHTTPClient(url, http.DefaultClient, nil)
	err := c.DeleteTask(context.Background(), 1)

	var rerr *service.RemoteError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 0, rerr.StatusCode)
	assert.Equal(t, "delete task", rerr.Op)
}

func TestNew_SendsBearerToken(t *testing.T) {
	var authz string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	cfg := &config.Config{
		Dir: t.TempDir(),
		API: config.APIConfig{BaseURL: srv.URL, Timeout: time.Second, Token: "secret"},
	}
	c, err := rest.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", authz)
}

func TestNew_WithoutCredentials(t *testing.T) {
	var authz string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	cfg := &config.Config{
		Dir: t.TempDir(),
		API: config.APIConfig{BaseURL: srv.URL, Timeout: time.Second},
	}
	c, err := rest.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, authz)
}

var _ service.Service = (*rest.Client)(nil)
