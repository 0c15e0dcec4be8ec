// Package service coordinates project mutations with the read-through cache
// and the event stream. Per-request ordering is fixed: store commit, then
// cache invalidation, then event publish, then response. Cache and publish
// failures are logged and never fail an otherwise-successful request.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"projecthub/internal/cache"
	"projecthub/internal/events"
	"projecthub/internal/platform/metrics"
	"projecthub/internal/project/models"
	"projecthub/internal/project/store"
	"projecthub/internal/token"
	id "projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/sentinel"
)

const defaultListCacheTTL = 60 * time.Second

// Service owns the project read and mutation flows.
type Service struct {
	projects  store.ProjectStore
	cache     cache.Cache
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cacheTTL  time.Duration
}

func New(
	projects store.ProjectStore,
	c cache.Cache,
	publisher events.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		projects:  projects,
		cache:     c,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		cacheTTL:  defaultListCacheTTL,
	}
}

// WithCacheTTL overrides the list cache lifetime.
func (s *Service) WithCacheTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// List returns the tenant's projects, newest first. The boolean reports
// whether the result came from the cache. An unreachable cache degrades to
// a store query; it never fails the request.
func (s *Service) List(ctx context.Context, ident *token.Identity) ([]models.Project, bool, error) {
	key := cache.ProjectListKey(ident.TenantID)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var projects []models.Project
		if jsonErr := json.Unmarshal([]byte(cached), &projects); jsonErr == nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return projects, true, nil
		}
		// A corrupt entry is treated as a miss; the refill below overwrites it.
		s.logger.WarnContext(ctx, "corrupt cache entry", "key", key)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "cache unavailable, falling back to store", "key", key, "error", err)
	}

	projects, err := s.projects.ListByTenant(ctx, ident.TenantID)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	if payload, jsonErr := json.Marshal(projects); jsonErr == nil {
		if cacheErr := s.cache.Set(ctx, key, string(payload), s.cacheTTL); cacheErr != nil {
			s.logger.WarnContext(ctx, "failed to populate cache", "key", key, "error", cacheErr)
		}
	}
	return projects, false, nil
}

// Get returns a single project. A project in another tenant is a 404, not a
// 403, so ids cannot be probed across tenants.
func (s *Service) Get(ctx context.Context, ident *token.Identity, projectID id.ProjectID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, ident.TenantID, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return project, nil
}

// Create inserts a project, invalidates the tenant's list cache and emits
// project.created.
func (s *Service) Create(ctx context.Context, ident *token.Identity, req models.UpsertRequest) (*models.Project, error) {
	if details := req.Validate(); len(details) > 0 {
		return nil, dErrors.NewValidation("invalid project request", details)
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:          id.NewProjectID(),
		TenantID:    ident.TenantID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		CreatedBy:   ident.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
	}

	s.invalidateList(ctx, ident.TenantID)
	s.emit(ctx, events.TypeProjectCreated, project, ident)
	return project, nil
}

// Update overwrites name, description and status, then invalidates and
// emits project.updated.
func (s *Service) Update(ctx context.Context, ident *token.Identity, projectID id.ProjectID, req models.UpsertRequest) (*models.Project, error) {
	if details := req.Validate(); len(details) > 0 {
		return nil, dErrors.NewValidation("invalid project request", details)
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, ident, projectID)
	if err != nil {
		return nil, err
	}

	project := *existing
	project.Name = req.Name
	project.Description = req.Description
	project.Status = status
	project.UpdatedAt = time.Now().UTC()

	if err := s.projects.Update(ctx, &project); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update project")
	}

	s.invalidateList(ctx, ident.TenantID)
	s.emit(ctx, events.TypeProjectUpdated, &project, ident)
	return &project, nil
}

// Delete removes a project and its tasks, then invalidates and emits
// project.deleted.
func (s *Service) Delete(ctx context.Context, ident *token.Identity, projectID id.ProjectID) error {
	existing, err := s.Get(ctx, ident, projectID)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, ident.TenantID, projectID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete project")
	}

	s.invalidateList(ctx, ident.TenantID)
	s.emit(ctx, events.TypeProjectDeleted, existing, ident)
	return nil
}

// invalidateList drops the tenant's list entry. An unconditional delete:
// concurrent writers racing here still converge on "no stale entry beyond
// the TTL".
func (s *Service) invalidateList(ctx context.Context, tenantID id.TenantID) {
	key := cache.ProjectListKey(tenantID)
	if err := s.cache.Del(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cache, entry expires by TTL",
			"key", key,
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, eventType string, project *models.Project, ident *token.Identity) {
	err := s.publisher.Publish(ctx, events.TopicProjectEvents, events.Event{
		Type:       eventType,
		EntityID:   project.ID.String(),
		EntityName: project.Name,
		ActorID:    ident.UserID.String(),
		TenantID:   project.TenantID.String(),
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			"topic", events.TopicProjectEvents,
			"type", eventType,
			"error", err,
		)
	}
}
