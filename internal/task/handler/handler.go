package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/platform/middleware"
	"projecthub/internal/task/models"
	"projecthub/internal/token"
	"projecthub/internal/transport/http/shared"
	id "projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
)

// Service is the task contract the handler depends on.
type Service interface {
	ListByProject(ctx context.Context, ident *token.Identity, projectID id.ProjectID) ([]models.Task, error)
	Get(ctx context.Context, ident *token.Identity, taskID id.TaskID) (*models.Task, error)
	Create(ctx context.Context, ident *token.Identity, req models.CreateRequest) (*models.Task, error)
	Update(ctx context.Context, ident *token.Identity, taskID id.TaskID, req models.UpdateRequest) (*models.Task, error)
	Delete(ctx context.Context, ident *token.Identity, taskID id.TaskID) error
}

// Handler exposes the /tasks endpoints.
type Handler struct {
	tasks  Service
	logger *slog.Logger
	admin  func(http.Handler) http.Handler
}

func New(tasks Service, logger *slog.Logger) *Handler {
	return &Handler{
		tasks:  tasks,
		logger: logger,
		admin:  middleware.RequireRole(logger, id.RoleAdmin),
	}
}

// Register mounts the task routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/project/{projectID}", h.handleListByProject)
		r.Get("/{taskID}", h.handleGet)
		r.With(h.admin).Post("/", h.handleCreate)
		r.With(h.admin).Put("/{taskID}", h.handleUpdate)
		r.With(h.admin).Delete("/{taskID}", h.handleDelete)
	})
}

func (h *Handler) handleListByProject(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	tasks, err := h.tasks.ListByProject(r.Context(), ident, projectID)
	if err != nil {
		h.logFailure(r, "failed to list tasks", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	taskID, err := id.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), ident, taskID)
	if err != nil {
		h.logFailure(r, "failed to load task", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, task)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	task, err := h.tasks.Create(r.Context(), ident, req)
	if err != nil {
		h.logFailure(r, "failed to create task", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	taskID, err := id.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	task, err := h.tasks.Update(r.Context(), ident, taskID, req)
	if err != nil {
		h.logFailure(r, "failed to update task", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, task)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	taskID, err := id.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), ident, taskID); err != nil {
		h.logFailure(r, "failed to delete task", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err)
}
