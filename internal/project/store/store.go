// Package store persists projects. Every query is tenant-scoped: a project
// id from another tenant behaves exactly like a missing row.
package store

import (
	"context"

	"projecthub/internal/project/models"
	id "projecthub/pkg/domain"
)

// ProjectStore is the persistence contract for projects.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	// Delete removes the project and, through the schema's cascade, its
	// tasks. Returns sentinel.ErrNotFound when no row matches.
	Delete(ctx context.Context, tenantID id.TenantID, projectID id.ProjectID) error
	FindByID(ctx context.Context, tenantID id.TenantID, projectID id.ProjectID) (*models.Project, error)
	// ListByTenant returns the tenant's projects newest first.
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]models.Project, error)
}
