package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidDueInput = errors.New("model: unrecognized due input")

// Task is the sole persisted entity: one reminder item with an optional
// due time. Notified records that an alert has been dispatched for the
// current Due value; editing Due resets it.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Due       *time.Time `json:"due,omitempty"`
	Completed bool       `json:"completed"`
	Notified  bool       `json:"notified"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.Notified && t.Due == nil {
		return errors.New("model: notified requires a due time")
	}
	return nil
}

// Draft is an add-request for a new task, validated by Add.
type Draft struct {
	Title string
	Notes string
	Due   *time.Time
}

// NewTask constructs a task from a draft. The caller has already checked
// that the trimmed title is non-empty.
func NewTask(draft Draft, now time.Time) Task {
	return Task{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(draft.Title),
		Notes:     strings.TrimSpace(draft.Notes),
		Due:       draft.Due,
		Completed: false,
		Notified:  false,
		CreatedAt: now,
	}
}

const (
	dueLayoutMinute = "2006-01-02 15:04"
	dueLayoutDay    = "2006-01-02"
)

// ParseDueInput parses the due field of an add/edit form. Empty input
// means no due time. Day-only input resolves to midnight local time.
func ParseDueInput(raw string, loc *time.Location) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if parsed, err := time.ParseInLocation(dueLayoutMinute, trimmed, loc); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.ParseInLocation(dueLayoutDay, trimmed, loc); err == nil {
		return &parsed, nil
	}
	return nil, ErrInvalidDueInput
}

// FormatDue renders an optional due time for display; the output
// round-trips through ParseDueInput.
func FormatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(dueLayoutMinute)
}

func sameDue(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
