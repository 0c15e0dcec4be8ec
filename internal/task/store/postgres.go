package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"projecthub/internal/task/models"
	id "projecthub/pkg/domain"
	"projecthub/pkg/platform/sentinel"
)

// Postgres is the production TaskStore.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const taskColumns = `id, project_id, title, description, status, due_date, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(task.ID), uuid.UUID(task.ProjectID),
		task.Title, task.Description, task.Status.String(),
		task.DueDate, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4, updated_at = $5
		WHERE id = $6
	`
	res, err := s.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Status.String(), task.DueDate,
		task.UpdatedAt, uuid.UUID(task.ID),
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRowAffected(res)
}

func (s *Postgres) Delete(ctx context.Context, taskID id.TaskID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, uuid.UUID(taskID))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRowAffected(res)
}

func (s *Postgres) FindByID(ctx context.Context, taskID id.TaskID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(taskID))

	task, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

func (s *Postgres) ListByProject(ctx context.Context, projectID id.ProjectID) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// DeleteByProject exists for stores without referential cascade. The
// Postgres schema already cascades, so this is a no-op safety net when the
// rows were removed by the FK and an idempotent delete otherwise.
func (s *Postgres) DeleteByProject(ctx context.Context, projectID id.ProjectID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = $1`, uuid.UUID(projectID))
	if err != nil {
		return fmt.Errorf("delete tasks by project: %w", err)
	}
	return nil
}

func scanTask(scan func(...any) error) (*models.Task, error) {
	var (
		task      models.Task
		rawID     uuid.UUID
		projectID uuid.UUID
		rawStatus string
		dueDate   sql.NullTime
	)
	err := scan(&rawID, &projectID, &task.Title, &task.Description,
		&rawStatus, &dueDate, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	task.ID = id.TaskID(rawID)
	task.ProjectID = id.ProjectID(projectID)
	task.Status = models.Status(rawStatus)
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	return &task, nil
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
