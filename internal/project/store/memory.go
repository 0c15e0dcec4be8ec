package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"projecthub/internal/project/models"
	id "projecthub/pkg/domain"
	"projecthub/pkg/platform/sentinel"
)

// Memory is an in-memory ProjectStore for tests and local development. It
// counts list queries so tests can prove a cache hit skipped the store.
type Memory struct {
	mu         sync.RWMutex
	byID       map[id.ProjectID]*models.Project
	listCalls  atomic.Int64
	onCascade  func(ctx context.Context, projectID id.ProjectID)
	cascadeSet bool
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[id.ProjectID]*models.Project)}
}

// OnDelete registers a cascade hook invoked after a project row is removed,
// standing in for the schema's ON DELETE CASCADE.
func (s *Memory) OnDelete(fn func(ctx context.Context, projectID id.ProjectID)) {
	s.onCascade = fn
	s.cascadeSet = true
}

func (s *Memory) Create(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *project
	s.byID[p.ID] = &p
	return nil
}

func (s *Memory) Update(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[project.ID]
	if !ok || existing.TenantID != project.TenantID {
		return sentinel.ErrNotFound
	}
	p := *project
	p.CreatedAt = existing.CreatedAt
	p.CreatedBy = existing.CreatedBy
	s.byID[p.ID] = &p
	return nil
}

func (s *Memory) Delete(ctx context.Context, tenantID id.TenantID, projectID id.ProjectID) error {
	s.mu.Lock()
	existing, ok := s.byID[projectID]
	if !ok || existing.TenantID != tenantID {
		s.mu.Unlock()
		return sentinel.ErrNotFound
	}
	delete(s.byID, projectID)
	s.mu.Unlock()

	if s.cascadeSet {
		s.onCascade(ctx, projectID)
	}
	return nil
}

func (s *Memory) FindByID(_ context.Context, tenantID id.TenantID, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.byID[projectID]
	if !ok || project.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	p := *project
	return &p, nil
}

func (s *Memory) ListByTenant(_ context.Context, tenantID id.TenantID) ([]models.Project, error) {
	s.listCalls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := []models.Project{}
	for _, project := range s.byID {
		if project.TenantID == tenantID {
			projects = append(projects, *project)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// ListQueries reports how many times ListByTenant hit the store.
func (s *Memory) ListQueries() int64 {
	return s.listCalls.Load()
}
