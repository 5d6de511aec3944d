package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/models"
)

const taskColumns = "id, title, description, completed, priority, due_date, created_at, updated_at, completed_at, user_id"

// TaskRepository is the persistent store for tasks. Mutations run inside a
// single transaction; correctness under concurrent writers relies on the
// store's read-committed isolation.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
		dueDate     sql.NullTime
		completedAt sql.NullTime
		userID      sql.NullInt64
	)
	err := row.Scan(&task.ID, &task.Title, &description, &task.Completed, &task.Priority,
		&dueDate, &task.CreatedAt, &task.UpdatedAt, &completedAt, &userID)
	if err != nil {
		return task, err
	}
	task.Description = description.String
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	if userID.Valid {
		id := int(userID.Int64)
		task.UserID = &id
	}
	return task, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

// List returns tasks matching the filter, newest first with insertion-order
// tie-break.
func (r *TaskRepository) List(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var conds []string
	var args []interface{}

	if f.Completed != nil {
		args = append(args, *f.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (models.Task, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	return task, err
}

// Insert persists a new task, assigning its id and stamping both timestamps
// to the current instant.
func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	return r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, completed, priority, due_date, created_at, updated_at, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		task.Title, task.Description, task.Completed, task.Priority,
		nullTime(task.DueDate), task.CreatedAt, task.UpdatedAt, nullInt(task.UserID),
	).Scan(&task.ID)
}

// Update reads the row under a lock, lets apply patch it, refreshes
// updated_at and writes it back, all in one transaction.
func (r *TaskRepository) Update(ctx context.Context, id int, apply func(*models.Task)) (models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1 FOR UPDATE", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	apply(&task)
	task.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, completed = $3, priority = $4,
		 due_date = $5, updated_at = $6, completed_at = $7 WHERE id = $8`,
		task.Title, task.Description, task.Completed, task.Priority,
		nullTime(task.DueDate), task.UpdatedAt, nullTime(task.CompletedAt), task.ID,
	)
	if err != nil {
		return models.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// InsertBatch commits all tasks in a single transaction. Callers validate the
// items beforehand; an item that reaches this method is always persisted.
func (r *TaskRepository) InsertBatch(ctx context.Context, tasks []*models.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, task := range tasks {
		task.CreatedAt = now
		task.UpdatedAt = now
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tasks (title, description, completed, priority, due_date, created_at, updated_at, user_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			task.Title, task.Description, task.Completed, task.Priority,
			nullTime(task.DueDate), task.CreatedAt, task.UpdatedAt, nullInt(task.UserID),
		).Scan(&task.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Stats computes the aggregate counts in one pass. "Created today" is judged
// against the current UTC calendar date.
func (r *TaskRepository) Stats(ctx context.Context) (models.TaskStats, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var stats models.TaskStats
	var p1, p2, p3 int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE completed),
		        COUNT(*) FILTER (WHERE priority = 1),
		        COUNT(*) FILTER (WHERE priority = 2),
		        COUNT(*) FILTER (WHERE priority = 3),
		        COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2)
		 FROM tasks`,
		dayStart, dayEnd,
	).Scan(&stats.Total, &stats.Completed, &p1, &p2, &p3, &stats.CreatedToday)
	if err != nil {
		return models.TaskStats{}, err
	}
	stats.PriorityCounts = map[int]int{1: p1, 2: p2, 3: p3}
	return stats, nil
}

func (r *TaskRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&n)
	return n, err
}

func (r *TaskRepository) CountCompleted(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE completed").Scan(&n)
	return n, err
}
