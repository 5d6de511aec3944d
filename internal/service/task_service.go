package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/cache"
	"taskmanager/internal/models"
	"taskmanager/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// TaskStore is the persistent source of truth for tasks.
// repository.TaskRepository is the production implementation.
type TaskStore interface {
	List(ctx context.Context, f models.TaskFilter) ([]models.Task, error)
	GetByID(ctx context.Context, id int) (models.Task, error)
	Insert(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, id int, apply func(*models.Task)) (models.Task, error)
	Delete(ctx context.Context, id int) error
	InsertBatch(ctx context.Context, tasks []*models.Task) error
	Stats(ctx context.Context) (models.TaskStats, error)
}

// ValidationError marks a request rejected before reaching the store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TaskService orchestrates store reads/writes and cache population and
// invalidation around them. The cache is opportunistic: every cache failure
// is logged and swallowed, never surfaced to the caller.
type TaskService struct {
	store    TaskStore
	cache    cache.TaskCache
	validate *validator.Validate
	log      *zap.Logger
}

func NewTaskService(store TaskStore, c cache.TaskCache, log *zap.Logger) *TaskService {
	return &TaskService{
		store:    store,
		cache:    c,
		validate: validator.New(),
		log:      log,
	}
}

// parseDueDate accepts ISO-8601 timestamps, including the Z UTC suffix and
// naive date or datetime forms.
func parseDueDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", value)
}

// List returns tasks matching the filter, newest first, and opportunistically
// caches the result under the filter signature.
func (s *TaskService) List(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	tasks, err := s.store.List(ctx, f)
	if err != nil {
		s.log.Error("Error fetching tasks", zap.Error(err))
		return nil, err
	}

	if data, err := json.Marshal(tasks); err == nil {
		if err := s.cache.Set(ctx, cache.ListKey(f), data, cache.ListTTL); err != nil {
			s.log.Warn("List cache set failed", zap.Error(err))
		}
	}

	return tasks, nil
}

// Get is the cache-aside read: a hit returns without touching the store,
// a miss falls through and repopulates the cache. A cached value may be up
// to TaskTTL stale relative to concurrent writers; that is accepted.
func (s *TaskService) Get(ctx context.Context, id int) (models.Task, error) {
	key := cache.TaskKey(id)
	data, err := s.cache.Get(ctx, key)
	if err == nil {
		var task models.Task
		if err := json.Unmarshal(data, &task); err == nil {
			return task, nil
		}
		s.log.Warn("Corrupt cache entry, falling back to store", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("Cache get failed", zap.Error(err))
	}

	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	if data, err := json.Marshal(task); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.TaskTTL); err != nil {
			s.log.Warn("Cache set failed", zap.Error(err))
		}
	}
	return task, nil
}

// buildTask materializes a creation request with its defaults applied.
// Malformed due dates are dropped with a warning rather than failing the
// request.
func (s *TaskService) buildTask(req models.CreateTaskRequest) (models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Task{}, &ValidationError{Message: "Title is required"}
	}

	task := models.Task{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Completed:   req.Completed,
		Priority:    1,
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != "" {
		parsed, err := parseDueDate(req.DueDate)
		if err != nil {
			s.log.Warn("Invalid due_date, leaving unset", zap.String("due_date", req.DueDate))
		} else {
			task.DueDate = &parsed
		}
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Task{}, &ValidationError{Message: "Title is required"}
	}
	task, err := s.buildTask(req)
	if err != nil {
		return models.Task{}, err
	}

	if err := s.store.Insert(ctx, &task); err != nil {
		s.log.Error("Error creating task", zap.Error(err))
		return models.Task{}, err
	}

	// A create can change any outstanding filtered list, so every list
	// entry is dropped rather than attempting selective invalidation.
	s.invalidateLists(ctx)

	s.log.Info("Task created successfully", zap.Int("task_id", task.ID), zap.String("title", task.Title))
	return task, nil
}

// Update applies a partial patch inside a single store transaction.
// completed_at is only stamped or cleared when completed actually changes.
func (s *TaskService) Update(ctx context.Context, id int, req models.UpdateTaskRequest) (models.Task, error) {
	task, err := s.store.Update(ctx, id, func(t *models.Task) {
		if req.Title != nil {
			t.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			t.Description = strings.TrimSpace(*req.Description)
		}
		if req.Completed != nil && *req.Completed != t.Completed {
			t.Completed = *req.Completed
			if t.Completed {
				now := time.Now().UTC()
				t.CompletedAt = &now
			} else {
				t.CompletedAt = nil
			}
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.DueDate.Set {
			t.DueDate = nil
			if req.DueDate.Value != nil {
				parsed, err := parseDueDate(*req.DueDate.Value)
				if err != nil {
					s.log.Warn("Invalid due_date on update, clearing field", zap.String("due_date", *req.DueDate.Value))
				} else {
					t.DueDate = &parsed
				}
			}
		}
	})
	if err != nil {
		if !errors.Is(err, repository.ErrTaskNotFound) {
			s.log.Error("Error updating task", zap.Int("task_id", id), zap.Error(err))
		}
		return models.Task{}, err
	}

	s.invalidateTask(ctx, id)
	s.invalidateLists(ctx)

	s.log.Info("Task updated", zap.Int("task_id", id))
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id int) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateTask(ctx, id)
	s.invalidateLists(ctx)

	s.log.Info("Task deleted", zap.Int("task_id", id))
	return nil
}

// BatchCreate validates each item independently; a bad item is reported by
// its original index and never reaches the store. All valid items commit in
// one transaction.
func (s *TaskService) BatchCreate(ctx context.Context, items []models.CreateTaskRequest) (models.BatchCreateResult, error) {
	result := models.BatchCreateResult{
		Created: []models.Task{},
		Errors:  []models.BatchError{},
	}

	var pending []*models.Task
	for idx, item := range items {
		task, err := s.buildTask(item)
		if err != nil {
			result.Errors = append(result.Errors, models.BatchError{Index: idx, Error: err.Error()})
			continue
		}
		pending = append(pending, &task)
	}

	if len(pending) > 0 {
		if err := s.store.InsertBatch(ctx, pending); err != nil {
			s.log.Error("Error in batch create", zap.Error(err))
			return models.BatchCreateResult{}, err
		}
	}
	for _, task := range pending {
		result.Created = append(result.Created, *task)
	}
	result.TotalCreated = len(result.Created)
	result.TotalErrors = len(result.Errors)

	s.invalidateLists(ctx)

	s.log.Info("Batch created tasks",
		zap.Int("created", result.TotalCreated), zap.Int("errors", result.TotalErrors))
	return result, nil
}

// Stats is always computed fresh from the store; statistics are not cached.
func (s *TaskService) Stats(ctx context.Context) (models.StatsResponse, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.log.Error("Error fetching stats", zap.Error(err))
		return models.StatsResponse{}, err
	}

	rate := 0.0
	if stats.Total > 0 {
		rate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	return models.StatsResponse{
		TotalTasks:        stats.Total,
		CompletedTasks:    stats.Completed,
		PendingTasks:      stats.Total - stats.Completed,
		CompletionRate:    rate,
		PriorityBreakdown: stats.PriorityCounts,
		TasksCreatedToday: stats.CreatedToday,
		Timestamp:         time.Now().UTC(),
	}, nil
}

func (s *TaskService) invalidateTask(ctx context.Context, id int) {
	if err := s.cache.Delete(ctx, cache.TaskKey(id)); err != nil {
		s.log.Warn("Cache invalidation failed", zap.Int("task_id", id), zap.Error(err))
	}
}

func (s *TaskService) invalidateLists(ctx context.Context) {
	if err := s.cache.InvalidateLists(ctx); err != nil {
		s.log.Warn("List cache invalidation failed", zap.Error(err))
	}
}
