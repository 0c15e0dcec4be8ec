package models

import (
	"time"

	"github.com/asaskevich/govalidator"

	id "projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
)

// Status is the closed set of project states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a status string. Empty defaults to pending, matching
// the creation default.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	case "":
		return StatusPending, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "status must be one of: pending, in-progress, completed")
}

func (s Status) String() string { return string(s) }

// Project is scoped to a tenant; CreatedBy records the admin who created it.
type Project struct {
	ID          id.ProjectID `json:"id"`
	TenantID    id.TenantID  `json:"tenant_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      Status       `json:"status"`
	CreatedBy   id.UserID    `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UpsertRequest is the body of both POST /projects and PUT /projects/{id}.
type UpsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Validate returns every violated field.
func (r UpsertRequest) Validate() []string {
	var details []string
	if !govalidator.StringLength(r.Name, "3", "255") {
		details = append(details, "name: must be between 3 and 255 characters")
	}
	if len(r.Description) > 1000 {
		details = append(details, "description: must be at most 1000 characters")
	}
	if _, err := ParseStatus(r.Status); err != nil {
		details = append(details, "status: must be one of: pending, in-progress, completed")
	}
	return details
}
