package store

import "tasksync/internal/service"

// Command is a state transition request.
//
// The set of commands is closed: only the types in this file implement it,
// and each one carries its own transition.
type Command interface {
	apply(s State) State
}

// Apply returns the state that results from applying cmd to s.
// It never modifies s or anything reachable from cmd.
func Apply(s State, cmd Command) State {
	return cmd.apply(s)
}

// SetLoading sets the loading flag.
type SetLoading struct {
	Loading bool
}

func (c SetLoading) apply(s State) State {
	s.Loading = c.Loading
	return s
}

// SetTasks replaces the task collection after a successful fetch.
// It clears the error and the loading flag.
type SetTasks struct {
	Tasks []service.Task
}

func (c SetTasks) apply(s State) State {
	s.Tasks = cloneTasks(c.Tasks)
	s.Error = ""
	s.Loading = false
	return s
}

// AddTask prepends a newly created task.
type AddTask struct {
	Task service.Task
}

func (c AddTask) apply(s State) State {
	tasks := make([]service.Task, 0, len(s.Tasks)+1)
	tasks = append(tasks, c.Task)
	tasks = append(tasks, s.Tasks...)
	s.Tasks = tasks
	return s
}

// UpdateTask replaces the task with the same id.
// If no task matches, the collection is left as it is.
type UpdateTask struct {
	Task service.Task
}

func (c UpdateTask) apply(s State) State {
	tasks := cloneTasks(s.Tasks)
	for i := range tasks {
		if tasks[i].ID == c.Task.ID {
			tasks[i] = c.Task
		}
	}
	s.Tasks = tasks
	return s
}

// DeleteTask removes the task with the given id.
// If no task matches, the collection is left as it is.
type DeleteTask struct {
	ID int64
}

func (c DeleteTask) apply(s State) State {
	tasks := make([]service.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID != c.ID {
			tasks = append(tasks, t)
		}
	}
	s.Tasks = tasks
	return s
}

// SetFilter merges a partial filter set into the active one.
type SetFilter struct {
	Patch FilterPatch
}

func (c SetFilter) apply(s State) State {
	s.Filters = c.Patch.Merge(s.Filters)
	return s
}

// SetStats stores the latest fetched stats.
type SetStats struct {
	Stats service.Stats
}

func (c SetStats) apply(s State) State {
	s.Stats = c.Stats.Clone()
	return s
}

// SetError records a failed list fetch and clears the loading flag.
type SetError struct {
	Message string
}

func (c SetError) apply(s State) State {
	s.Error = c.Message
	s.Loading = false
	return s
}
