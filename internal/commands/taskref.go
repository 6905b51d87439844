package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasksync/internal/service"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses a task id as shown by list.
// Ids are positive integers; a leading '#' is accepted.
func ParseTaskID(arg string) (int64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(arg), "#")
	if s == "" {
		return 0, ErrTaskIDRequired
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", arg)
	}
	return id, nil
}

// ParseTaskIDs parses one or more task ids.
func ParseTaskIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, ErrTaskIDRequired
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := ParseTaskID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseStatus parses a status name. "in-progress" is accepted for
// in_progress.
func ParseStatus(s string) (service.Status, error) {
	st := service.Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status: %s (want pending, in_progress or completed)", s)
	}
	return st, nil
}

// ParsePriority parses a priority name.
func ParsePriority(s string) (service.Priority, error) {
	p := service.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %s (want low, medium or high)", s)
	}
	return p, nil
}

// ParseDueDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDueDate(s string) (*time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return &d, nil
}
