package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"projecthub/internal/project/models"
	id "projecthub/pkg/domain"
	"projecthub/pkg/platform/sentinel"
)

// Postgres is the production ProjectStore.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const projectColumns = `id, tenant_id, name, description, status, created_by, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(project.ID), uuid.UUID(project.TenantID),
		project.Name, project.Description, project.Status.String(),
		uuid.UUID(project.CreatedBy), project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $1, description = $2, status = $3, updated_at = $4
		WHERE id = $5 AND tenant_id = $6
	`
	res, err := s.db.ExecContext(ctx, query,
		project.Name, project.Description, project.Status.String(), project.UpdatedAt,
		uuid.UUID(project.ID), uuid.UUID(project.TenantID),
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRowAffected(res)
}

func (s *Postgres) Delete(ctx context.Context, tenantID id.TenantID, projectID id.ProjectID) error {
	// Tasks go with the project via ON DELETE CASCADE, keeping the removal
	// a single atomic statement.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1 AND tenant_id = $2`,
		uuid.UUID(projectID), uuid.UUID(tenantID),
	)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRowAffected(res)
}

func (s *Postgres) FindByID(ctx context.Context, tenantID id.TenantID, projectID id.ProjectID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND tenant_id = $2`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(projectID), uuid.UUID(tenantID))

	project, err := scanProject(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return project, nil
}

func (s *Postgres) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func scanProject(scan func(...any) error) (*models.Project, error) {
	var (
		project   models.Project
		rawID     uuid.UUID
		tenantID  uuid.UUID
		rawStatus string
		createdBy uuid.UUID
	)
	err := scan(&rawID, &tenantID, &project.Name, &project.Description,
		&rawStatus, &createdBy, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}
	project.ID = id.ProjectID(rawID)
	project.TenantID = id.TenantID(tenantID)
	project.Status = models.Status(rawStatus)
	project.CreatedBy = id.UserID(createdBy)
	return &project, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
