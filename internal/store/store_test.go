package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/service"
	"tasksync/internal/store"
)

func task(id int64, title string) service.Task {
	return service.Task{
		ID:        id,
		Title:     title,
		Priority:  service.PriorityMedium,
		Status:    service.StatusPending,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, int(id), 0, time.UTC),
	}
}

func populated() store.State {
	s := store.Initial()
	s.Tasks = []service.Task{task(3, "three"), task(2, "two"), task(1, "one")}
	s.Filters = service.FilterSet{Status: service.StatusPending}
	s.Stats = service.Stats{
		TotalTasks:        3,
		StatusBreakdown:   map[service.Status]int{service.StatusPending: 3},
		PriorityBreakdown: map[service.Priority]int{service.PriorityMedium: 3},
	}
	s.Error = "previous failure"
	s.Loading = true
	return s
}

// snapshot deep-copies the parts of a state that Apply could alias.
func snapshot(s store.State) store.State {
	out := s
	out.Tasks = append([]service.Task(nil), s.Tasks...)
	if s.Tasks != nil && len(s.Tasks) == 0 {
		out.Tasks = []service.Task{}
	}
	out.Stats = s.Stats.Clone()
	return out
}

func allCommands() map[string]store.Command {
	return map[string]store.Command{
		"SetLoading":    store.SetLoading{Loading: false},
		"SetTasks":      store.SetTasks{Tasks: []service.Task{task(9, "nine")}},
		"AddTask":       store.AddTask{Task: task(4, "four")},
		"UpdateTask":    store.UpdateTask{Task: task(2, "two (edited)")},
		"UpdateMissing": store.UpdateTask{Task: task(42, "ghost")},
		"DeleteTask":    store.DeleteTask{ID: 2},
		"DeleteMissing": store.DeleteTask{ID: 42},
		"SetFilter":     store.SetFilter{Patch: store.WithSearch("milk")},
		"SetStats": store.SetStats{Stats: service.Stats{
			TotalTasks:      1,
			StatusBreakdown: map[service.Status]int{service.StatusCompleted: 1},
			CompletionRate:  100,
		}},
		"SetError": store.SetError{Message: "boom"},
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	for name, cmd := range allCommands() {
		t.Run(name, func(t *testing.T) {
			in := populated()
			before := snapshot(in)

			_ = store.Apply(in, cmd)

			if diff := cmp.Diff(before, in); diff != "" {
				t.Errorf("input state mutated (-before +after):\n%s", diff)
			}
		})
	}
}

func TestApply_IsDeterministic(t *testing.T) {
	for name, cmd := range allCommands() {
		t.Run(name, func(t *testing.T) {
			in := populated()
			first := store.Apply(in, cmd)
			second := store.Apply(in, cmd)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("repeated application differs (-first +second):\n%s", diff)
			}
		})
	}
}

func TestApply_ResultDoesNotAliasInput(t *testing.T) {
	in := populated()
	out := store.Apply(in, store.UpdateTask{Task: task(2, "edited")})
	out.Tasks[0].Title = "scribbled"
	assert.Equal(t, "three", in.Tasks[0].Title)

	stats := service.Stats{StatusBreakdown: map[service.Status]int{service.StatusPending: 1}}
	out = store.Apply(in, store.SetStats{Stats: stats})
	out.Stats.StatusBreakdown[service.StatusPending] = 50
	assert.Equal(t, 1, stats.StatusBreakdown[service.StatusPending])

	tasks := []service.Task{task(1, "one")}
	out = store.Apply(in, store.SetTasks{Tasks: tasks})
	out.Tasks[0].Title = "scribbled"
	assert.Equal(t, "one", tasks[0].Title)
}

func TestSetTasks_ClearsErrorAndLoading(t *testing.T) {
	out := store.Apply(populated(), store.SetTasks{Tasks: []service.Task{task(9, "nine")}})
	assert.Equal(t, []service.Task{task(9, "nine")}, out.Tasks)
	assert.Empty(t, out.Error)
	assert.False(t, out.Loading)
}

func TestSetTasks_NilBecomesEmpty(t *testing.T) {
	out := store.Apply(populated(), store.SetTasks{})
	require.NotNil(t, out.Tasks)
	assert.Empty(t, out.Tasks)
}

func TestAddTask_Prepends(t *testing.T) {
	in := populated()
	out := store.Apply(in, store.AddTask{Task: task(4, "four")})

	want := append([]service.Task{task(4, "four")}, in.Tasks...)
	assert.Equal(t, want, out.Tasks)
}

func TestUpdateTask_ReplacesMatch(t *testing.T) {
	out := store.Apply(populated(), store.UpdateTask{Task: task(2, "two (edited)")})

	require.Len(t, out.Tasks, 3)
	assert.Equal(t, "three", out.Tasks[0].Title)
	assert.Equal(t, "two (edited)", out.Tasks[1].Title)
	assert.Equal(t, "one", out.Tasks[2].Title)
}

func TestUpdateAndDelete_MissingIDIsNoop(t *testing.T) {
	in := populated()

	updated := store.Apply(in, store.UpdateTask{Task: task(42, "ghost")})
	assert.ElementsMatch(t, in.Tasks, updated.Tasks)

	deleted := store.Apply(in, store.DeleteTask{ID: 42})
	assert.ElementsMatch(t, in.Tasks, deleted.Tasks)

	empty := store.Apply(store.Initial(), store.DeleteTask{ID: 42})
	assert.Empty(t, empty.Tasks)
}

func TestDeleteTask_RemovesMatch(t *testing.T) {
	out := store.Apply(populated(), store.DeleteTask{ID: 2})
	assert.Equal(t, []service.Task{task(3, "three"), task(1, "one")}, out.Tasks)
}

func TestSetFilter_MergesPartial(t *testing.T) {
	in := populated()

	out := store.Apply(in, store.SetFilter{Patch: store.WithSearch("milk")})
	assert.Equal(t, service.FilterSet{Status: service.StatusPending, Search: "milk"}, out.Filters)

	out = store.Apply(out, store.SetFilter{Patch: store.WithStatus("")})
	assert.Equal(t, service.FilterSet{Search: "milk"}, out.Filters)

	out = store.Apply(out, store.SetFilter{})
	assert.Equal(t, service.FilterSet{Search: "milk"}, out.Filters)

	out = store.Apply(out, store.SetFilter{Patch: store.WithPriority(service.PriorityHigh)})
	assert.Equal(t, service.FilterSet{Priority: service.PriorityHigh, Search: "milk"}, out.Filters)
}

func TestSetError_ClearsLoading(t *testing.T) {
	out := store.Apply(populated(), store.SetError{Message: "boom"})
	assert.Equal(t, "boom", out.Error)
	assert.False(t, out.Loading)
	assert.Len(t, out.Tasks, 3)
}

func TestSetLoading(t *testing.T) {
	out := store.Apply(store.Initial(), store.SetLoading{Loading: true})
	assert.True(t, out.Loading)
}

func TestState_Task(t *testing.T) {
	s := populated()
	got, ok := s.Task(2)
	require.True(t, ok)
	assert.Equal(t, "two", got.Title)

	_, ok = s.Task(42)
	assert.False(t, ok)
}

func TestStore_DispatchNotifiesListeners(t *testing.T) {
	st := store.New()

	var calls []string
	cancel := st.Subscribe(func(prev, next store.State) {
		calls = append(calls, next.Filters.Search)
		assert.NotEqual(t, prev.Filters.Search, next.Filters.Search)
	})

	st.Dispatch(store.SetFilter{Patch: store.WithSearch("a")})
	st.Dispatch(store.SetFilter{Patch: store.WithSearch("ab")})
	cancel()
	cancel()
	st.Dispatch(store.SetFilter{Patch: store.WithSearch("abc")})

	assert.Equal(t, []string{"a", "ab"}, calls)
	assert.Equal(t, "abc", st.State().Filters.Search)
}

func TestStore_ConcurrentDispatchIsSerialized(t *testing.T) {
	st := store.New()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			st.Dispatch(store.AddTask{Task: task(id, "t")})
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, st.State().Tasks, 50)
}
