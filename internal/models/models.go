package models

import (
	"encoding/json"
	"time"
)

// Task is a unit of work. UserID is a weak reference to a User and is never
// serialized; neither entity's lifecycle depends on the other's.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    int        `json:"priority"` // 1: Low, 2: Medium, 3: High
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UserID      *int       `json:"-"`
}

// User is an authentication principal. The password hash never leaves the
// process.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskFilter holds the optional list filters; nil members are not applied.
// Filters combine conjunctively.
type TaskFilter struct {
	Completed *bool
	Priority  *int
	Search    string
}

// TaskStats holds the raw counts computed by the store.
type TaskStats struct {
	Total          int
	Completed      int
	PriorityCounts map[int]int
	CreatedToday   int
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    *int   `json:"priority"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskRequest applies a partial patch; nil pointer fields are left
// untouched. DueDate is tri-state so an explicit null clears the field while
// an absent key leaves it alone.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Completed   *bool          `json:"completed"`
	Priority    *int           `json:"priority"`
	DueDate     OptionalString `json:"due_date"`
}

type BatchCreateRequest struct {
	Tasks []CreateTaskRequest `json:"tasks"`
}

type BatchError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BatchCreateResult struct {
	Created      []Task       `json:"created"`
	Errors       []BatchError `json:"errors"`
	TotalCreated int          `json:"total_created"`
	TotalErrors  int          `json:"total_errors"`
}

type StatsResponse struct {
	TotalTasks        int         `json:"total_tasks"`
	CompletedTasks    int         `json:"completed_tasks"`
	PendingTasks      int         `json:"pending_tasks"`
	CompletionRate    float64     `json:"completion_rate"`
	PriorityBreakdown map[int]int `json:"priority_breakdown"`
	TasksCreatedToday int         `json:"tasks_created_today"`
	Timestamp         time.Time   `json:"timestamp"`
}

// OptionalString distinguishes an absent JSON key from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
