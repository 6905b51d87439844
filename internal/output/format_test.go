package output_test

import (
	"bytes"
	"testing"
	"time"

	"tasksync/internal/output"
	"tasksync/internal/service"
)

func TestTasks(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tasks := []service.Task{
		{ID: 12, Title: "Buy milk", Status: service.StatusInProgress, Priority: service.PriorityHigh, DueDate: &due},
		{ID: 3, Title: "line one\nline two", Status: service.StatusPending, Priority: service.PriorityLow},
		{ID: 1, Title: "   ", Status: service.StatusCompleted, Priority: service.PriorityMedium},
	}

	var buf bytes.Buffer
	output.NewPrinter(&buf, output.Plain()).Tasks(tasks)

	want := "" +
		"  12  in_progress  high    Buy milk  due 2024-03-05\n" +
		"   3  pending      low     line one line two\n" +
		"   1  completed    medium  (untitled)\n"
	if buf.String() != want {
		t.Errorf("Tasks output:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTaskDetail(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := created.Add(2 * time.Hour)
	task := service.Task{
		ID:          7,
		Title:       "Buy milk",
		Description: "semi-skimmed\nfrom the corner shop",
		Status:      service.StatusCompleted,
		Priority:    service.PriorityHigh,
		CreatedAt:   created,
		CompletedAt: &completed,
	}

	var buf bytes.Buffer
	output.NewPrinter(&buf, output.Plain()).TaskDetail(task)

	want := "#7 Buy milk\n" +
		"  status:    completed\n" +
		"  priority:  high\n" +
		"  created:   " + created.Local().Format(output.TimeFormat) + "\n" +
		"  completed: " + completed.Local().Format(output.TimeFormat) + "\n" +
		"\n" +
		"  semi-skimmed\n" +
		"  from the corner shop\n"
	if buf.String() != want {
		t.Errorf("TaskDetail output:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestStats(t *testing.T) {
	stats := service.Stats{
		TotalTasks:        4,
		StatusBreakdown:   map[service.Status]int{service.StatusPending: 2, service.StatusInProgress: 1, service.StatusCompleted: 1},
		PriorityBreakdown: map[service.Priority]int{service.PriorityHigh: 1, service.PriorityMedium: 2, service.PriorityLow: 1},
		CompletionRate:    25,
	}

	var buf bytes.Buffer
	output.NewPrinter(&buf, output.Plain()).Stats(stats)

	want := "Total:      4\n" +
		"Completion: 25.00%\n" +
		"Status:     pending 2  in_progress 1  completed 1\n" +
		"Priority:   low 1  medium 2  high 1\n"
	if buf.String() != want {
		t.Errorf("Stats output:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestNewStyles_DependsOnBackground(t *testing.T) {
	dark := output.NewStyles(nil, true)
	light := output.NewStyles(nil, false)

	if dark.Header.GetForeground() == light.Header.GetForeground() {
		t.Error("dark and light headers share a foreground color")
	}
	for _, st := range service.Statuses {
		if _, ok := dark.Status[st]; !ok {
			t.Errorf("no style for status %s", st)
		}
	}
}

func TestUnknownEnumValuesRender(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf, output.NewStyles(nil, true)).Task(service.Task{ID: 1, Title: "x", Status: "archived", Priority: "urgent"})
	if !bytes.Contains(buf.Bytes(), []byte("archived")) {
		t.Errorf("unknown status not printed: %q", buf.String())
	}
}
