// Package store persists tasks. Tasks carry no tenant column; tenancy is
// enforced one level up by resolving the owning project first.
package store

import (
	"context"

	"projecthub/internal/task/models"
	id "projecthub/pkg/domain"
)

// TaskStore is the persistence contract for tasks.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, taskID id.TaskID) error
	FindByID(ctx context.Context, taskID id.TaskID) (*models.Task, error)
	ListByProject(ctx context.Context, projectID id.ProjectID) ([]models.Task, error)
	DeleteByProject(ctx context.Context, projectID id.ProjectID) error
}
