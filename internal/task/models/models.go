package models

import (
	"time"

	"github.com/asaskevich/govalidator"

	id "projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
)

// Status is the closed set of task states.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// ParseStatus validates a status string. Empty defaults to todo.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return Status(s), nil
	case "":
		return StatusTodo, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "status must be one of: todo, in-progress, done")
}

func (s Status) String() string { return string(s) }

// Task belongs to a project; tenant scope is inherited through the project.
type Task struct {
	ID          id.TaskID    `json:"id"`
	ProjectID   id.ProjectID `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      Status       `json:"status"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateRequest is the body of POST /tasks.
type CreateRequest struct {
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

// UpdateRequest is the body of PUT /tasks/{id}.
type UpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

func validateFields(title, description, status, dueDate string) []string {
	var details []string
	if !govalidator.StringLength(title, "3", "255") {
		details = append(details, "title: must be between 3 and 255 characters")
	}
	if len(description) > 1000 {
		details = append(details, "description: must be at most 1000 characters")
	}
	if _, err := ParseStatus(status); err != nil {
		details = append(details, "status: must be one of: todo, in-progress, done")
	}
	if dueDate != "" {
		if _, err := time.Parse(time.RFC3339, dueDate); err != nil {
			details = append(details, "due_date: must be an RFC 3339 timestamp")
		}
	}
	return details
}

// Validate returns every violated field.
func (r CreateRequest) Validate() []string {
	details := validateFields(r.Title, r.Description, r.Status, r.DueDate)
	if r.ProjectID == "" {
		details = append(details, "project_id: is required")
	}
	return details
}

// Validate returns every violated field.
func (r UpdateRequest) Validate() []string {
	return validateFields(r.Title, r.Description, r.Status, r.DueDate)
}

// ParseDueDate converts the optional wire value. Empty means no due date.
func ParseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "due_date must be an RFC 3339 timestamp")
	}
	t = t.UTC()
	return &t, nil
}
