package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalStringTriState(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &req))
	assert.False(t, req.DueDate.Set, "absent key")

	req = UpdateTaskRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":null}`), &req))
	assert.True(t, req.DueDate.Set)
	assert.Nil(t, req.DueDate.Value)

	req = UpdateTaskRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":"2026-01-01"}`), &req))
	assert.True(t, req.DueDate.Set)
	require.NotNil(t, req.DueDate.Value)
	assert.Equal(t, "2026-01-01", *req.DueDate.Value)
}

func TestTaskWireShape(t *testing.T) {
	userID := 9
	task := Task{
		ID:        1,
		Title:     "t",
		CreatedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		UserID:    &userID,
	}
	data, err := json.Marshal(task)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))

	// Nullable timestamps serialize as explicit nulls; the user relation and
	// password material never appear on the wire.
	assert.Contains(t, wire, "due_date")
	assert.Nil(t, wire["due_date"])
	assert.Contains(t, wire, "completed_at")
	assert.Nil(t, wire["completed_at"])
	assert.NotContains(t, wire, "user_id")
	assert.Equal(t, "2026-09-01T12:00:00Z", wire["created_at"])
}

func TestUserNeverSerializesPasswordHash(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Username: "admin", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}
