// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"encoding/json"
	"strings"
	"time"
)

// Priority is a task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists all priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is a task lifecycle status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists all statuses in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a single task item as served by the remote task service.
// CompletedAt is maintained by the remote side and is only set while
// Status is completed.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TaskInput is the writable part of a task, sent on create and full update.
// A nil DueDate is sent as null.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// NewTaskInput returns an input with the remote defaults for new tasks.
func NewTaskInput(title string) TaskInput {
	return TaskInput{
		Title:    title,
		Priority: PriorityMedium,
		Status:   StatusPending,
	}
}

// InputFrom returns the writable fields of t.
func InputFrom(t Task) TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
	}
}

// Validate checks the input locally before it is submitted.
// A blank title never reaches the remote service.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: "invalid priority: " + string(in.Priority)}
	}
	if in.Status != "" && !in.Status.Valid() {
		return &ValidationError{Field: "status", Message: "invalid status: " + string(in.Status)}
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left as they are.
// ClearDueDate sends an explicit null due date and wins over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	DueDate      *time.Time
	ClearDueDate bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.DueDate == nil && !p.ClearDueDate
}

// Validate checks the fields that are set.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: "invalid priority: " + string(*p.Priority)}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Message: "invalid status: " + string(*p.Status)}
	}
	return nil
}

// Apply returns t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	return t
}

// MarshalJSON encodes only the fields that are set.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	switch {
	case p.ClearDueDate:
		body["due_date"] = nil
	case p.DueDate != nil:
		body["due_date"] = *p.DueDate
	}
	return json.Marshal(body)
}

// Stats holds aggregate counts computed by the remote service.
type Stats struct {
	TotalTasks        int              `json:"total_tasks"`
	StatusBreakdown   map[Status]int   `json:"status_breakdown"`
	PriorityBreakdown map[Priority]int `json:"priority_breakdown"`
	CompletionRate    float64          `json:"completion_rate"`
}

// Clone returns a copy of s that shares no maps with it.
func (s Stats) Clone() Stats {
	out := s
	if s.StatusBreakdown != nil {
		out.StatusBreakdown = make(map[Status]int, len(s.StatusBreakdown))
		for k, v := range s.StatusBreakdown {
			out.StatusBreakdown[k] = v
		}
	}
	if s.PriorityBreakdown != nil {
		out.PriorityBreakdown = make(map[Priority]int, len(s.PriorityBreakdown))
		for k, v := range s.PriorityBreakdown {
			out.PriorityBreakdown[k] = v
		}
	}
	return out
}

// BulkResult is the outcome of a bulk status update.
type BulkResult struct {
	Message        string `json:"message"`
	UpdatedCount   int    `json:"updated_count"`
	RequestedCount int    `json:"requested_count"`
}
