package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error kinds surfaced by services and stores. The HTTP layer maps each one
// to a status code, so wrap them with %w instead of replacing them.
var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("not found")
)

// Defaults applied when a client leaves a field out.
const (
	DefaultCategory      = "general"
	DefaultPriority      = PriorityMedium
	DefaultCategoryColor = "#3b82f6"

	// CategoryAll is the list filter value meaning "any category".
	CategoryAll = "all"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskStatus is the completion filter accepted by task listing.
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusPending   TaskStatus = "pending"
)

// ID is an opaque record identifier. Each store maps it onto its native key
// type; a value the store cannot decode is reported as ErrValidation.
type ID string

func (id ID) String() string {
	return string(id)
}

// User represents an account
type User struct {
	ID           ID        `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Task represents a task owned by a single user
type Task struct {
	ID          ID         `json:"id" db:"id"`
	UserID      ID         `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Category    string     `json:"category" db:"category"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Completed   bool       `json:"completed" db:"completed"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Category is a user-defined label with a display color
type Category struct {
	ID        ID        `json:"id" db:"id"`
	UserID    ID        `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsOverdue reports whether the task is still open past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskFilter narrows a task listing. Zero values mean "no filter".
type TaskFilter struct {
	Category string
	Status   TaskStatus
	Search   string
}

// Normalize drops filter values that do not restrict anything. The search
// term is kept as sent.
func (f TaskFilter) Normalize() TaskFilter {
	if f.Category == CategoryAll {
		f.Category = ""
	}
	if f.Status != TaskStatusCompleted && f.Status != TaskStatusPending {
		f.Status = ""
	}
	return f
}

// Matches reports whether a task satisfies every set filter.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	switch f.Status {
	case TaskStatusCompleted:
		if !t.Completed {
			return false
		}
	case TaskStatusPending:
		if t.Completed {
			return false
		}
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// TaskPatch carries the fields of a partial update. Nil means "leave as is".
// ClearDueDate removes the due date and wins over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Category     *string
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	UpdatedAt    time.Time
}

// Apply writes the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = p.UpdatedAt
}

// CategoryCount is one row of the per-category breakdown in TaskStats.
type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int64  `json:"count" db:"count"`
}

// TaskStats aggregates a user's tasks
type TaskStats struct {
	Total      int64           `json:"total"`
	Completed  int64           `json:"completed"`
	Pending    int64           `json:"pending"`
	Overdue    int64           `json:"overdue"`
	ByCategory []CategoryCount `json:"by_category"`
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate accepts RFC 3339 timestamps, naive timestamps (read as UTC)
// and bare dates.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid due_date %q", ErrValidation, value)
}
