// Package service owns the task flows. Every operation resolves the owning
// project first, under the caller's tenant, so tasks inherit tenant scope
// without carrying a tenant column.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"projecthub/internal/events"
	projectmodels "projecthub/internal/project/models"
	"projecthub/internal/task/models"
	"projecthub/internal/task/store"
	"projecthub/internal/token"
	id "projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/sentinel"
)

// ProjectResolver answers whether a project exists inside a tenant.
type ProjectResolver interface {
	FindByID(ctx context.Context, tenantID id.TenantID, projectID id.ProjectID) (*projectmodels.Project, error)
}

// Service owns task reads and mutations.
type Service struct {
	tasks     store.TaskStore
	projects  ProjectResolver
	publisher events.Publisher
	logger    *slog.Logger
}

func New(tasks store.TaskStore, projects ProjectResolver, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		tasks:     tasks,
		projects:  projects,
		publisher: publisher,
		logger:    logger,
	}
}

// ListByProject returns the project's tasks, newest first. A project the
// caller's tenant does not own reads as missing.
func (s *Service) ListByProject(ctx context.Context, ident *token.Identity, projectID id.ProjectID) ([]models.Task, error) {
	if err := s.resolveProject(ctx, ident, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

// Get returns a single task after confirming its project belongs to the
// caller's tenant.
func (s *Service) Get(ctx context.Context, ident *token.Identity, taskID id.TaskID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load task")
	}
	if err := s.resolveProject(ctx, ident, task.ProjectID); err != nil {
		// The task exists but in another tenant; report it as absent.
		return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	return task, nil
}

// Create inserts a task under an existing project and emits task.created.
func (s *Service) Create(ctx context.Context, ident *token.Identity, req models.CreateRequest) (*models.Task, error) {
	if details := req.Validate(); len(details) > 0 {
		return nil, dErrors.NewValidation("invalid task request", details)
	}
	projectID, err := id.ParseProjectID(req.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveProject(ctx, ident, projectID); err != nil {
		return nil, err
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	dueDate, err := models.ParseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          id.NewTaskID(),
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}

	s.emit(ctx, events.TypeTaskCreated, task, ident)
	return task, nil
}

// Update overwrites title, description, status and due date, then emits
// task.updated.
func (s *Service) Update(ctx context.Context, ident *token.Identity, taskID id.TaskID, req models.UpdateRequest) (*models.Task, error) {
	if details := req.Validate(); len(details) > 0 {
		return nil, dErrors.NewValidation("invalid task request", details)
	}

	existing, err := s.Get(ctx, ident, taskID)
	if err != nil {
		return nil, err
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	dueDate, err := models.ParseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	task := *existing
	task.Title = req.Title
	task.Description = req.Description
	task.Status = status
	task.DueDate = dueDate
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, &task); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
	}

	s.emit(ctx, events.TypeTaskUpdated, &task, ident)
	return &task, nil
}

// Delete removes a task and emits task.deleted.
func (s *Service) Delete(ctx context.Context, ident *token.Identity, taskID id.TaskID) error {
	existing, err := s.Get(ctx, ident, taskID)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete task")
	}

	s.emit(ctx, events.TypeTaskDeleted, existing, ident)
	return nil
}

func (s *Service) resolveProject(ctx context.Context, ident *token.Identity, projectID id.ProjectID) error {
	_, err := s.projects.FindByID(ctx, ident.TenantID, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve project")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, eventType string, task *models.Task, ident *token.Identity) {
	err := s.publisher.Publish(ctx, events.TopicTaskEvents, events.Event{
		Type:       eventType,
		EntityID:   task.ID.String(),
		EntityName: task.Title,
		ActorID:    ident.UserID.String(),
		TenantID:   ident.TenantID.String(),
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			"topic", events.TopicTaskEvents,
			"type", eventType,
			"error", err,
		)
	}
}
