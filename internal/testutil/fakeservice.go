// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"tasksync/internal/service"
)

// ListResponder replaces the default ListTasks behavior when set.
type ListResponder func(ctx context.Context, query map[string]string) ([]service.Task, error)

// FakeService is an in-memory implementation of service.Service for testing.
// It applies filters and computes stats the way the remote service does and
// records every call it receives.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task // newest first
	nextID int64
	now    time.Time

	// Error injection for testing
	ListTasksErr        error
	GetTaskErr          error
	CreateTaskErr       error
	UpdateTaskErr       error
	PatchTaskErr        error
	UpdateTaskStatusErr error
	DeleteTaskErr       error
	StatsErr            error
	BulkUpdateErr       error

	// ListResponder overrides ListTasks (used to control fetch timing).
	ListResponder ListResponder

	// Recorded calls
	ListQueries  []map[string]string
	StatsCalls   int
	DeleteCalls  []int64
	CreateInputs []service.TaskInput
	Patches      []service.TaskPatch
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		now:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// AddTask seeds a task and returns it. Seeded tasks are newest first.
func (f *FakeService) AddTask(title string, priority service.Priority, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(service.TaskInput{Title: title, Priority: priority, Status: status})
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListCalls returns the number of ListTasks calls so far.
func (f *FakeService) ListCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ListQueries)
}

// StatsCallCount returns the number of Stats calls so far.
func (f *FakeService) StatsCallCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.StatsCalls
}

func (f *FakeService) insert(in service.TaskInput) service.Task {
	f.now = f.now.Add(time.Minute)
	t := service.Task{
		ID:          f.nextID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	if t.Priority == "" {
		t.Priority = service.PriorityMedium
	}
	if t.Status == "" {
		t.Status = service.StatusPending
	}
	f.stampCompleted(&t)
	f.nextID++
	f.tasks = append([]service.Task{t}, f.tasks...)
	return t
}

func (f *FakeService) stampCompleted(t *service.Task) {
	if t.Status == service.StatusCompleted {
		if t.CompletedAt == nil {
			at := f.now
			t.CompletedAt = &at
		}
		return
	}
	t.CompletedAt = nil
}

func (f *FakeService) indexOf(id int64) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func notFound(op string) error {
	return &service.RemoteError{Op: op, StatusCode: 404, Message: "Not found.", Err: service.ErrNotFound}
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, query map[string]string) ([]service.Task, error) {
	f.mu.Lock()
	recorded := make(map[string]string, len(query))
	for k, v := range query {
		recorded[k] = v
	}
	f.ListQueries = append(f.ListQueries, recorded)
	responder := f.ListResponder
	listErr := f.ListTasksErr
	f.mu.Unlock()

	if responder != nil {
		return responder(ctx, query)
	}
	if listErr != nil {
		return nil, listErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	search := strings.ToLower(query[service.QuerySearch])
	var result []service.Task
	for _, t := range f.tasks {
		if s := query[service.QueryStatus]; s != "" && string(t.Status) != s {
			continue
		}
		if p := query[service.QueryPriority]; p != "" && string(t.Priority) != p {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, notFound("get task")
	}
	return f.tasks[i], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateInputs = append(f.CreateInputs, in)
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	return f.insert(in), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, notFound("update task")
	}
	f.now = f.now.Add(time.Minute)
	t := f.tasks[i]
	t.Title = strings.TrimSpace(in.Title)
	t.Description = in.Description
	t.Priority = in.Priority
	t.Status = in.Status
	t.DueDate = in.DueDate
	t.UpdatedAt = f.now
	f.stampCompleted(&t)
	f.tasks[i] = t
	return t, nil
}

// PatchTask implements service.Service.
func (f *FakeService) PatchTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Patches = append(f.Patches, patch)
	if f.PatchTaskErr != nil {
		return service.Task{}, f.PatchTaskErr
	}

	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, notFound("patch task")
	}
	f.now = f.now.Add(time.Minute)
	t := patch.Apply(f.tasks[i])
	t.UpdatedAt = f.now
	f.stampCompleted(&t)
	f.tasks[i] = t
	return t, nil
}

// UpdateTaskStatus implements service.Service.
func (f *FakeService) UpdateTaskStatus(ctx context.Context, id int64, status service.Status) (service.Task, error) {
	if f.UpdateTaskStatusErr != nil {
		return service.Task{}, f.UpdateTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, notFound("update status")
	}
	f.now = f.now.Add(time.Minute)
	t := f.tasks[i]
	t.Status = status
	t.UpdatedAt = f.now
	f.stampCompleted(&t)
	f.tasks[i] = t
	return t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls = append(f.DeleteCalls, id)
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	i := f.indexOf(id)
	if i < 0 {
		return nil
	}
	f.tasks = append(f.tasks[:i:i], f.tasks[i+1:]...)
	return nil
}

// Stats implements service.Service.
func (f *FakeService) Stats(ctx context.Context) (service.Stats, error) {
	f.mu.Lock()
	f.StatsCalls++
	statsErr := f.StatsErr
	f.mu.Unlock()
	if statsErr != nil {
		return service.Stats{}, statsErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	stats := service.Stats{
		TotalTasks:        len(f.tasks),
		StatusBreakdown:   map[service.Status]int{},
		PriorityBreakdown: map[service.Priority]int{},
	}
	for _, s := range service.Statuses {
		stats.StatusBreakdown[s] = 0
	}
	for _, p := range service.Priorities {
		stats.PriorityBreakdown[p] = 0
	}
	for _, t := range f.tasks {
		stats.StatusBreakdown[t.Status]++
		stats.PriorityBreakdown[t.Priority]++
	}
	if stats.TotalTasks > 0 {
		rate := float64(stats.StatusBreakdown[service.StatusCompleted]) / float64(stats.TotalTasks) * 100
		stats.CompletionRate = float64(int(rate*100+0.5)) / 100
	}
	return stats, nil
}

// BulkUpdateStatus implements service.Service.
func (f *FakeService) BulkUpdateStatus(ctx context.Context, ids []int64, status service.Status) (service.BulkResult, error) {
	if f.BulkUpdateErr != nil {
		return service.BulkResult{}, f.BulkUpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[int64]bool, len(ids))
	updated := 0
	for _, id := range ids {
		i := f.indexOf(id)
		if i < 0 || seen[id] {
			continue
		}
		seen[id] = true
		f.tasks[i].Status = status
		updated++
	}

	return service.BulkResult{
		UpdatedCount:   updated,
		RequestedCount: len(ids),
	}, nil
}
