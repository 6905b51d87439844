// Package orchestrator keeps a session store in step with the remote task
// service.
//
// Mutations (create, update, delete) run on the caller's goroutine: they
// call the service, apply the result to the store, and report the outcome
// through a notify.Notifier. List fetches and stats refreshes run on their
// own goroutines and apply their results whenever they arrive.
//
// Fetches are neither sequenced nor cancelled. When two fetches overlap,
// whichever resolves last is the one left in the store, even if it was
// issued first.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"tasksync/internal/notify"
	"tasksync/internal/service"
	"tasksync/internal/store"
)

// Notification messages.
const (
	MsgLoadFailed   = "Failed to load tasks"
	MsgCreated      = "Task created"
	MsgCreateFailed = "Failed to create task"
	MsgUpdated      = "Task updated"
	MsgUpdateFailed = "Failed to update task"
	MsgStatus       = "Status updated"
	MsgStatusFailed = "Failed to update status"
	MsgDeleted      = "Task deleted"
	MsgDeleteFailed = "Failed to delete task"
	MsgBulkFailed   = "Failed to update tasks"
)

// Orchestrator coordinates a store with a remote service.
type Orchestrator struct {
	store    *store.Store
	svc      service.Service
	notifier notify.Notifier
	logger   *log.Logger

	effects  sync.WaitGroup
	fetchSeq atomic.Uint64
}

// New creates an orchestrator for one session.
// A nil logger discards log output.
func New(st *store.Store, svc service.Service, n notify.Notifier, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Orchestrator{
		store:    st,
		svc:      svc,
		notifier: n,
		logger:   logger,
	}
}

// State returns the current session state.
func (o *Orchestrator) State() store.State {
	return o.store.State()
}

// Wait blocks until all in-flight fetches and stats refreshes are done.
func (o *Orchestrator) Wait() {
	o.effects.Wait()
}

// SetFilters merges patch into the active filters. If that changes them,
// a fetch with the new constraints is issued. Reports whether it was.
func (o *Orchestrator) SetFilters(ctx context.Context, patch store.FilterPatch) bool {
	prev := o.store.State().Filters
	next := o.store.Dispatch(store.SetFilter{Patch: patch}).Filters
	if next == prev {
		return false
	}
	o.fetch(ctx, next.Query())
	return true
}

// Load issues a fetch for the active filters.
func (o *Orchestrator) Load(ctx context.Context) {
	o.fetch(ctx, o.store.State().Filters.Query())
}

// RefreshStats schedules a stats refresh.
func (o *Orchestrator) RefreshStats(ctx context.Context) {
	o.scheduleStats(ctx)
}

func (o *Orchestrator) fetch(ctx context.Context, query map[string]string) {
	seq := o.fetchSeq.Add(1)
	o.store.Dispatch(store.SetLoading{Loading: true})
	o.logger.Debug("fetch issued", "seq", seq, "query", query)

	o.effects.Add(1)
	go func() {
		defer o.effects.Done()

		tasks, err := o.svc.ListTasks(ctx, query)
		if err != nil {
			o.logger.Debug("fetch failed", "seq", seq, "err", err)
			o.store.Dispatch(store.SetError{Message: err.Error()})
			o.notifier.Notify(notify.Failed(MsgLoadFailed, err))
			return
		}

		o.logger.Debug("fetch resolved", "seq", seq, "tasks", len(tasks))
		o.store.Dispatch(store.SetTasks{Tasks: tasks})
		o.scheduleStats(ctx)
	}()
}

// scheduleStats must be called once for every task-collection transition.
func (o *Orchestrator) scheduleStats(ctx context.Context) {
	o.effects.Add(1)
	go func() {
		defer o.effects.Done()

		_, _ = o.FetchStats(ctx)
	}()
}

// FetchStats refreshes stats on the caller's goroutine. A failure is
// logged and returned but never recorded in the store.
func (o *Orchestrator) FetchStats(ctx context.Context) (service.Stats, error) {
	stats, err := o.svc.Stats(ctx)
	if err != nil {
		o.logger.Warn("stats refresh failed", "err", err)
		return service.Stats{}, err
	}
	o.store.Dispatch(store.SetStats{Stats: stats})
	return stats, nil
}

// Get reads a single task. The store is not touched.
func (o *Orchestrator) Get(ctx context.Context, id int64) (service.Task, error) {
	return o.svc.GetTask(ctx, id)
}

// CreateTask creates a task and prepends it to the collection.
// On failure the store is unchanged and the error is returned.
func (o *Orchestrator) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	task, err := o.svc.CreateTask(ctx, in)
	if err != nil {
		o.notifier.Notify(notify.Failed(MsgCreateFailed, err))
		return service.Task{}, err
	}

	o.store.Dispatch(store.AddTask{Task: task})
	o.scheduleStats(ctx)
	o.notifier.Notify(notify.Succeeded(MsgCreated))
	return task, nil
}

// UpdateTask replaces a task's writable fields.
func (o *Orchestrator) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	task, err := o.svc.UpdateTask(ctx, id, in)
	if err != nil {
		o.notifier.Notify(notify.Failed(MsgUpdateFailed, err))
		return service.Task{}, err
	}

	o.store.Dispatch(store.UpdateTask{Task: task})
	o.scheduleStats(ctx)
	o.notifier.Notify(notify.Succeeded(MsgUpdated))
	return task, nil
}

// PatchTask changes only the fields set in patch. It notifies and refreshes
// stats the same way UpdateTask does.
func (o *Orchestrator) PatchTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	task, err := o.svc.PatchTask(ctx, id, patch)
	if err != nil {
		o.notifier.Notify(notify.Failed(MsgUpdateFailed, err))
		return service.Task{}, err
	}

	o.store.Dispatch(store.UpdateTask{Task: task})
	o.scheduleStats(ctx)
	o.notifier.Notify(notify.Succeeded(MsgUpdated))
	return task, nil
}

// UpdateTaskStatus changes only a task's status.
func (o *Orchestrator) UpdateTaskStatus(ctx context.Context, id int64, status service.Status) (service.Task, error) {
	task, err := o.svc.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		o.notifier.Notify(notify.Failed(MsgStatusFailed, err))
		return service.Task{}, err
	}

	o.store.Dispatch(store.UpdateTask{Task: task})
	o.scheduleStats(ctx)
	o.notifier.Notify(notify.Succeeded(MsgStatus))
	return task, nil
}

// DeleteTask deletes a task remotely and drops it from the collection.
// The remote call is made whether or not the task is held locally.
func (o *Orchestrator) DeleteTask(ctx context.Context, id int64) error {
	if err := o.svc.DeleteTask(ctx, id); err != nil {
		o.notifier.Notify(notify.Failed(MsgDeleteFailed, err))
		return err
	}

	o.store.Dispatch(store.DeleteTask{ID: id})
	o.scheduleStats(ctx)
	o.notifier.Notify(notify.Succeeded(MsgDeleted))
	return nil
}

// BulkUpdateStatus sets the status of several tasks and then reloads the
// list, since the remote side only reports counts.
func (o *Orchestrator) BulkUpdateStatus(ctx context.Context, ids []int64, status service.Status) (service.BulkResult, error) {
	res, err := o.svc.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		o.notifier.Notify(notify.Failed(MsgBulkFailed, err))
		return service.BulkResult{}, err
	}

	msg := res.Message
	if msg == "" {
		msg = fmt.Sprintf("%d tasks updated", res.UpdatedCount)
	}
	o.notifier.Notify(notify.Succeeded(msg))
	o.Load(ctx)
	return res, nil
}
