// Package testsupport provides in-memory stand-ins for the store and cache,
// used by unit tests across packages.
package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskmanager/internal/models"
	"taskmanager/internal/repository"
)

// InMemoryStore implements service.TaskStore with the same observable
// semantics as the Postgres repository.
type InMemoryStore struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]models.Task
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: map[int]models.Task{}}
}

// Put writes a task directly, bypassing the service layer. Tests use it to
// simulate an out-of-band store mutation.
func (s *InMemoryStore) Put(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

func (s *InMemoryStore) List(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := []models.Task{}
	for _, task := range s.tasks {
		if f.Completed != nil && task.Completed != *f.Completed {
			continue
		}
		if f.Priority != nil && task.Priority != *f.Priority {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(f.Search)) {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id int) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrTaskNotFound
	}
	return task, nil
}

func (s *InMemoryStore) Insert(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.nextID++
	task.ID = s.nextID
	s.tasks[task.ID] = *task
	return nil
}

func (s *InMemoryStore) Update(ctx context.Context, id int, apply func(*models.Task)) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrTaskNotFound
	}
	apply(&task)
	task.UpdatedAt = time.Now().UTC()
	s.tasks[id] = task
	return task, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *InMemoryStore) InsertBatch(ctx context.Context, tasks []*models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, task := range tasks {
		task.CreatedAt = now
		task.UpdatedAt = now
		s.nextID++
		task.ID = s.nextID
		s.tasks[task.ID] = *task
	}
	return nil
}

func (s *InMemoryStore) Stats(ctx context.Context) (models.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	stats := models.TaskStats{PriorityCounts: map[int]int{1: 0, 2: 0, 3: 0}}
	for _, task := range s.tasks {
		stats.Total++
		if task.Completed {
			stats.Completed++
		}
		if task.Priority >= 1 && task.Priority <= 3 {
			stats.PriorityCounts[task.Priority]++
		}
		if !task.CreatedAt.Before(dayStart) && task.CreatedAt.Before(dayEnd) {
			stats.CreatedToday++
		}
	}
	return stats, nil
}

func (s *InMemoryStore) CountAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks), nil
}

func (s *InMemoryStore) CountCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, task := range s.tasks {
		if task.Completed {
			n++
		}
	}
	return n, nil
}
