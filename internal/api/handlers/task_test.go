package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskmanager/internal/models"
	"taskmanager/internal/service"
	"taskmanager/pkg/testsupport"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// createTestApp wires the task routes against in-memory fakes, mirroring the
// production route layout.
func createTestApp() *fiber.App {
	store := testsupport.NewInMemoryStore()
	cch := testsupport.NewRecordingCache()
	svc := service.NewTaskService(store, cch, zap.NewNop())
	h := NewTaskHandler(svc, zap.NewNop())

	app := fiber.New()
	tasks := app.Group("/api/tasks")
	tasks.Get("/", h.List)
	tasks.Post("/", h.Create)
	tasks.Post("/batch", h.BatchCreate)
	tasks.Get("/:id", h.Get)
	tasks.Put("/:id", h.Update)
	tasks.Delete("/:id", h.Delete)
	app.Get("/api/stats", h.Stats)
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Resource not found"})
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func createTask(t *testing.T, app *fiber.App, body interface{}) models.Task {
	t.Helper()
	resp, data := doJSON(t, app, "POST", "/api/tasks", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var task models.Task
	require.NoError(t, json.Unmarshal(data, &task))
	return task
}

func TestCreateTaskEndpoint(t *testing.T) {
	app := createTestApp()

	task := createTask(t, app, map[string]interface{}{"title": "Test Task", "priority": 2})
	assert.NotZero(t, task.ID)
	assert.Equal(t, "Test Task", task.Title)
	assert.Equal(t, 2, task.Priority)
	assert.False(t, task.Completed)
}

func TestCreateTaskValidation(t *testing.T) {
	app := createTestApp()

	resp, data := doJSON(t, app, "POST", "/api/tasks", map[string]interface{}{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "Title is required")

	resp, _ = doJSON(t, app, "POST", "/api/tasks", map[string]interface{}{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTaskBadBody(t *testing.T) {
	app := createTestApp()

	req := httptest.NewRequest("POST", "/api/tasks", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTaskEndpoint(t *testing.T) {
	app := createTestApp()
	created := createTask(t, app, map[string]interface{}{"title": "Get me"})

	resp, data := doJSON(t, app, "GET", fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var task models.Task
	require.NoError(t, json.Unmarshal(data, &task))
	assert.Equal(t, "Get me", task.Title)

	resp, data = doJSON(t, app, "GET", "/api/tasks/99999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(data), "Task not found")

	resp, _ = doJSON(t, app, "GET", "/api/tasks/not-a-number", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTasksEndpoint(t *testing.T) {
	app := createTestApp()
	createTask(t, app, map[string]interface{}{"title": "alpha", "priority": 1})
	createTask(t, app, map[string]interface{}{"title": "beta", "priority": 2})
	createTask(t, app, map[string]interface{}{"title": "Beta max", "priority": 2, "completed": true})

	resp, data := doJSON(t, app, "GET", "/api/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.Task
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all, 3)

	resp, data = doJSON(t, app, "GET", "/api/tasks?priority=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var filtered []models.Task
	require.NoError(t, json.Unmarshal(data, &filtered))
	assert.Len(t, filtered, 2)

	resp, data = doJSON(t, app, "GET", "/api/tasks?completed=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "Beta max", filtered[0].Title)

	resp, data = doJSON(t, app, "GET", "/api/tasks?search=BETA", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &filtered))
	assert.Len(t, filtered, 2)
}

func TestUpdateTaskEndpoint(t *testing.T) {
	app := createTestApp()
	created := createTask(t, app, map[string]interface{}{"title": "Old title"})

	resp, data := doJSON(t, app, "PUT", fmt.Sprintf("/api/tasks/%d", created.ID),
		map[string]interface{}{"title": "New title", "completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var task models.Task
	require.NoError(t, json.Unmarshal(data, &task))
	assert.Equal(t, "New title", task.Title)
	assert.True(t, task.Completed)
	assert.NotNil(t, task.CompletedAt)

	resp, _ = doJSON(t, app, "PUT", "/api/tasks/99999", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	app := createTestApp()
	created := createTask(t, app, map[string]interface{}{"title": "Doomed"})

	resp, data := doJSON(t, app, "DELETE", fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "Task deleted successfully")

	// Deleting again must answer 404, as must a subsequent get.
	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBatchCreateEndpoint(t *testing.T) {
	app := createTestApp()

	resp, data := doJSON(t, app, "POST", "/api/tasks/batch", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"title": "A"},
			{"description": "no title"},
			{"title": "B"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result models.BatchCreateResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 2, result.TotalCreated)
	assert.Equal(t, 1, result.TotalErrors)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
}

func TestBatchCreateRequiresTasksArray(t *testing.T) {
	app := createTestApp()

	resp, data := doJSON(t, app, "POST", "/api/tasks/batch", map[string]interface{}{"items": []string{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "Tasks array required")
}

func TestStatsEndpoint(t *testing.T) {
	app := createTestApp()
	createTask(t, app, map[string]interface{}{"title": "a", "completed": true})
	createTask(t, app, map[string]interface{}{"title": "b"})

	resp, data := doJSON(t, app, "GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.StatsResponse
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.PendingTasks)
	assert.InDelta(t, 50.0, stats.CompletionRate, 0.0001)
}

func TestUnknownRouteFallback(t *testing.T) {
	app := createTestApp()

	resp, data := doJSON(t, app, "GET", "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(data), "Resource not found")
}
