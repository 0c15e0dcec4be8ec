package store

import (
	"context"
	"sort"
	"sync"

	"projecthub/internal/task/models"
	id "projecthub/pkg/domain"
	"projecthub/pkg/platform/sentinel"
)

// Memory is an in-memory TaskStore for tests and local development.
type Memory struct {
	mu   sync.RWMutex
	byID map[id.TaskID]*models.Task
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[id.TaskID]*models.Task)}
}

func (s *Memory) Create(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *task
	s.byID[t.ID] = &t
	return nil
}

func (s *Memory) Update(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[task.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	t := *task
	t.ProjectID = existing.ProjectID
	t.CreatedAt = existing.CreatedAt
	s.byID[t.ID] = &t
	return nil
}

func (s *Memory) Delete(_ context.Context, taskID id.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[taskID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, taskID)
	return nil
}

func (s *Memory) FindByID(_ context.Context, taskID id.TaskID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.byID[taskID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	t := *task
	return &t, nil
}

func (s *Memory) ListByProject(_ context.Context, projectID id.ProjectID) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, task := range s.byID {
		if task.ProjectID == projectID {
			tasks = append(tasks, *task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Memory) DeleteByProject(_ context.Context, projectID id.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for taskID, task := range s.byID {
		if task.ProjectID == projectID {
			delete(s.byID, taskID)
		}
	}
	return nil
}
