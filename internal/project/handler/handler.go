package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/platform/middleware"
	"projecthub/internal/project/models"
	"projecthub/internal/token"
	"projecthub/internal/transport/http/shared"
	id "projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
)

// Service is the project contract the handler depends on.
type Service interface {
	List(ctx context.Context, ident *token.Identity) ([]models.Project, bool, error)
	Get(ctx context.Context, ident *token.Identity, projectID id.ProjectID) (*models.Project, error)
	Create(ctx context.Context, ident *token.Identity, req models.UpsertRequest) (*models.Project, error)
	Update(ctx context.Context, ident *token.Identity, projectID id.ProjectID, req models.UpsertRequest) (*models.Project, error)
	Delete(ctx context.Context, ident *token.Identity, projectID id.ProjectID) error
}

// Handler exposes the /projects endpoints. All routes sit behind
// RequireAuth; mutations additionally require the admin role.
type Handler struct {
	projects Service
	logger   *slog.Logger
	admin    func(http.Handler) http.Handler
}

func New(projects Service, logger *slog.Logger) *Handler {
	return &Handler{
		projects: projects,
		logger:   logger,
		admin:    middleware.RequireRole(logger, id.RoleAdmin),
	}
}

// Register mounts the project routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{projectID}", h.handleGet)
		r.With(h.admin).Post("/", h.handleCreate)
		r.With(h.admin).Put("/{projectID}", h.handleUpdate)
		r.With(h.admin).Delete("/{projectID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	projects, fromCache, err := h.projects.List(r.Context(), ident)
	if err != nil {
		h.logFailure(r, "failed to list projects", err)
		shared.WriteError(w, err)
		return
	}

	if fromCache {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	shared.WriteJSON(w, http.StatusOK, projects)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	project, err := h.projects.Get(r.Context(), ident, projectID)
	if err != nil {
		h.logFailure(r, "failed to load project", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	var req models.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	project, err := h.projects.Create(r.Context(), ident, req)
	if err != nil {
		h.logFailure(r, "failed to create project", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, project)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	project, err := h.projects.Update(r.Context(), ident, projectID, req)
	if err != nil {
		h.logFailure(r, "failed to update project", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.projects.Delete(r.Context(), ident, projectID); err != nil {
		h.logFailure(r, "failed to delete project", err)
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
