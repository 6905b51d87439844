// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tasksync/internal/service"
)

const (
	// DateFormat is used for due dates.
	DateFormat = "2006-01-02"

	// TimeFormat is used for timestamps.
	TimeFormat = "2006-01-02 15:04"
)

// Styles colors the parts of the output.
type Styles struct {
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Status   map[service.Status]lipgloss.Style
	Priority map[service.Priority]lipgloss.Style
}

// NewStyles returns the palette for a dark or light background. Styles
// are bound to r, which decides whether colors are emitted at all; a nil r
// uses the lipgloss default renderer.
func NewStyles(r *lipgloss.Renderer, dark bool) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	pick := func(onDark, onLight string) lipgloss.Color {
		if dark {
			return lipgloss.Color(onDark)
		}
		return lipgloss.Color(onLight)
	}
	fg := func(onDark, onLight string) lipgloss.Style {
		return r.NewStyle().Foreground(pick(onDark, onLight))
	}

	return Styles{
		Header:  r.NewStyle().Bold(true).Foreground(pick("#E5E7EB", "#111827")),
		Muted:   fg("#9CA3AF", "#6B7280"),
		Success: fg("#34D399", "#047857"),
		Failure: fg("#F87171", "#B91C1C"),
		Status: map[service.Status]lipgloss.Style{
			service.StatusPending:    fg("#FBBF24", "#B45309"),
			service.StatusInProgress: fg("#60A5FA", "#1D4ED8"),
			service.StatusCompleted:  fg("#34D399", "#047857"),
		},
		Priority: map[service.Priority]lipgloss.Style{
			service.PriorityLow:    fg("#9CA3AF", "#6B7280"),
			service.PriorityMedium: fg("#E5E7EB", "#374151"),
			service.PriorityHigh:   fg("#F87171", "#B91C1C").Bold(true),
		},
	}
}

// Plain returns styles that render text unchanged.
func Plain() Styles {
	none := lipgloss.NewStyle()
	s := Styles{
		Header:   none,
		Muted:    none,
		Success:  none,
		Failure:  none,
		Status:   map[service.Status]lipgloss.Style{},
		Priority: map[service.Priority]lipgloss.Style{},
	}
	for _, st := range service.Statuses {
		s.Status[st] = none
	}
	for _, pr := range service.Priorities {
		s.Priority[pr] = none
	}
	return s
}

func (s Styles) status(st service.Status) lipgloss.Style {
	if style, ok := s.Status[st]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

func (s Styles) priority(pr service.Priority) lipgloss.Style {
	if style, ok := s.Priority[pr]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Printer writes tasks and stats.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, styles Styles) *Printer {
	return &Printer{w: w, styles: styles}
}

// Styles returns the printer's styles.
func (p *Printer) Styles() Styles {
	return p.styles
}

// Tasks prints one line per task.
// Format: "{ID:>4}  {STATUS:<11}  {PRIORITY:<6}  {TITLE}[  due {DATE}]"
func (p *Printer) Tasks(tasks []service.Task) {
	for _, t := range tasks {
		p.Task(t)
	}
}

// Task prints a single task line.
func (p *Printer) Task(t service.Task) {
	status := p.styles.status(t.Status).Render(fmt.Sprintf("%-11s", t.Status))
	priority := p.styles.priority(t.Priority).Render(fmt.Sprintf("%-6s", t.Priority))

	line := fmt.Sprintf("%4d  %s  %s  %s", t.ID, status, priority, normalizeTitle(t.Title))
	if t.DueDate != nil {
		line += "  " + p.styles.Muted.Render("due "+t.DueDate.Format(DateFormat))
	}
	fmt.Fprintln(p.w, line)
}

// TaskDetail prints every field of a task.
func (p *Printer) TaskDetail(t service.Task) {
	fmt.Fprintln(p.w, p.styles.Header.Render(fmt.Sprintf("#%d %s", t.ID, normalizeTitle(t.Title))))

	field := func(name, value string) {
		fmt.Fprintf(p.w, "  %s %s\n", p.styles.Muted.Render(fmt.Sprintf("%-10s", name+":")), value)
	}
	field("status", p.styles.status(t.Status).Render(string(t.Status)))
	field("priority", p.styles.priority(t.Priority).Render(string(t.Priority)))
	if t.DueDate != nil {
		field("due", t.DueDate.Format(DateFormat))
	}
	field("created", formatTime(t.CreatedAt))
	if !t.UpdatedAt.IsZero() {
		field("updated", formatTime(t.UpdatedAt))
	}
	if t.CompletedAt != nil {
		field("completed", formatTime(*t.CompletedAt))
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintln(p.w)
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintf(p.w, "  %s\n", strings.TrimRight(line, "\r"))
		}
	}
}

// Stats prints the aggregate counts.
func (p *Printer) Stats(s service.Stats) {
	fmt.Fprintf(p.w, "%s %d\n", p.styles.Header.Render("Total:     "), s.TotalTasks)
	fmt.Fprintf(p.w, "%s %.2f%%\n", p.styles.Header.Render("Completion:"), s.CompletionRate)

	parts := make([]string, 0, len(service.Statuses))
	for _, st := range service.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", p.styles.status(st).Render(string(st)), s.StatusBreakdown[st]))
	}
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Header.Render("Status:    "), strings.Join(parts, "  "))

	parts = parts[:0]
	for _, pr := range service.Priorities {
		parts = append(parts, fmt.Sprintf("%s %d", p.styles.priority(pr).Render(string(pr)), s.PriorityBreakdown[pr]))
	}
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Header.Render("Priority:  "), strings.Join(parts, "  "))
}

func formatTime(t time.Time) string {
	return t.Local().Format(TimeFormat)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
