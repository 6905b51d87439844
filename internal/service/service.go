package service

import "context"

// Service defines the interface for remote task store operations.
// All HTTP calls go through this interface.
// The orchestrator and commands never talk to the transport directly.
type Service interface {
	// ListTasks returns the tasks matching a normalized query
	// (see FilterSet.Query). An empty query lists everything.
	// Results are in remote order (newest first).
	ListTasks(ctx context.Context, query map[string]string) ([]Task, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask replaces the writable fields of a task.
	UpdateTask(ctx context.Context, id int64, in TaskInput) (Task, error)

	// PatchTask changes only the fields set in patch.
	PatchTask(ctx context.Context, id int64, patch TaskPatch) (Task, error)

	// UpdateTaskStatus changes only the status of a task.
	UpdateTaskStatus(ctx context.Context, id int64, status Status) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error

	// Stats returns aggregate counts over all tasks.
	Stats(ctx context.Context) (Stats, error)

	// BulkUpdateStatus sets the status of several tasks at once.
	BulkUpdateStatus(ctx context.Context, ids []int64, status Status) (BulkResult, error)
}
