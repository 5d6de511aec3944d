package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCounter struct {
	total     int
	completed int
	err       error
}

func (c staticCounter) CountAll(ctx context.Context) (int, error) {
	return c.total, c.err
}

func (c staticCounter) CountCompleted(ctx context.Context) (int, error) {
	return c.completed, c.err
}

func scrape(t *testing.T, counter TaskCounter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(counter).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsExposition(t *testing.T) {
	body := scrape(t, staticCounter{total: 5, completed: 2})
	assert.Contains(t, body, "tasks_total 5")
	assert.Contains(t, body, "tasks_completed_total 2")
}

func TestMetricsStoreFailureReportsZero(t *testing.T) {
	body := scrape(t, staticCounter{err: context.DeadlineExceeded})
	assert.Contains(t, body, "tasks_total 0")
	assert.Contains(t, body, "tasks_completed_total 0")
}
