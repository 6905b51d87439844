// Package store holds the session state and its transition function.
//
// State values are never modified in place. Apply always builds a new
// value, copying any slice or map it changes, so a caller holding an older
// State keeps seeing exactly what it saw before.
package store

import "tasksync/internal/service"

// State is the client-side view of the remote task store for one session.
type State struct {
	// Tasks is the current task collection, newest first.
	Tasks []service.Task

	// Loading is true while a list fetch is outstanding.
	Loading bool

	// Error is the message of the last failed list fetch.
	// Empty means no error. It is cleared by the next successful fetch.
	Error string

	// Filters are the active list constraints.
	Filters service.FilterSet

	// Stats is the latest stats snapshot fetched from the remote service.
	Stats service.Stats
}

// Initial returns the empty state a session starts with.
func Initial() State {
	return State{
		Tasks: []service.Task{},
		Stats: service.Stats{
			StatusBreakdown:   map[service.Status]int{},
			PriorityBreakdown: map[service.Priority]int{},
		},
	}
}

// Task returns the task with the given id, if present.
func (s State) Task(id int64) (service.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// FilterPatch is a partial FilterSet. Nil fields are left unchanged.
type FilterPatch struct {
	Status   *service.Status
	Priority *service.Priority
	Search   *string
}

// Empty reports whether the patch sets no field.
func (p FilterPatch) Empty() bool {
	return p.Status == nil && p.Priority == nil && p.Search == nil
}

// Merge returns f with the patch's fields applied.
func (p FilterPatch) Merge(f service.FilterSet) service.FilterSet {
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	return f
}

// WithStatus returns a patch that sets only the status filter.
func WithStatus(s service.Status) FilterPatch {
	return FilterPatch{Status: &s}
}

// WithPriority returns a patch that sets only the priority filter.
func WithPriority(p service.Priority) FilterPatch {
	return FilterPatch{Priority: &p}
}

// WithSearch returns a patch that sets only the search filter.
func WithSearch(q string) FilterPatch {
	return FilterPatch{Search: &q}
}

func cloneTasks(tasks []service.Task) []service.Task {
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	return out
}
