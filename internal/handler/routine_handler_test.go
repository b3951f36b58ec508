package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"routtie/internal/kv"
	"routtie/internal/model"
	"routtie/internal/store"
)

type nullDocs struct{}

func (nullDocs) List(context.Context, int) ([]json.RawMessage, error) { return nil, nil }
func (nullDocs) Upsert(context.Context, int, string, json.RawMessage) error {
	return nil
}
func (nullDocs) DeleteAll(context.Context, int) error { return nil }

type nullScheduler struct{}

func (nullScheduler) Schedule(string, time.Time, string, string) {}
func (nullScheduler) CancelAll()                                 {}

// monday 2025-06-02, 10:00 UTC
var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr := store.NewManager(func(userID int) *store.Store {
		return store.New(nullDocs{}, kv.NewMemoryStore(), nullScheduler{}, zap.NewNop(),
			store.WithClock(func() time.Time { return testNow }))
	}, zap.NewNop())
	t.Cleanup(mgr.Close)

	// Sign-in replaces local state with the (empty) remote set; give that
	// load time to land before tests mutate. The signal is missed when the
	// load finished before Subscribe, hence the short timeout.
	s := mgr.Attach(1)
	ch := s.Subscribe()
	select {
	case <-ch:
	case <-time.After(100 * time.Millisecond):
	}

	h := NewRoutineHandler(mgr)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	})
	r.GET("/routines", h.List)
	r.POST("/routines", h.Create)
	r.PUT("/routines/:id", h.Update)
	r.DELETE("/routines/:id", h.Delete)
	r.POST("/routines/:id/toggle", h.Toggle)

	return r, mgr
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRoutine_ValidationMessages(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"days":["Mon"],"times":["09:00"]}`, "Title is required."},
		{"missing days", `{"title":"Workout","times":["09:00"]}`, "Please select at least one day."},
		{"missing times", `{"title":"Workout","days":["Mon"]}`, "Please select at least one time."},
		{"title beats days", `{"times":["09:00"]}`, "Title is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/routines", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp["error"])
		})
	}
}

func TestCreateToggleAndListFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/routines", `{"title":"Workout","days":["Mon","Wed"],"times":["09:00"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var created model.Routine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Workout", created.Title)

	// Monday: the routine lands in today's bucket.
	w = doJSON(t, r, http.MethodGet, "/routines", "")
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Today     []model.Routine `json:"today"`
		Other     []model.Routine `json:"other"`
		Completed []model.Routine `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Today, 1)
	assert.Empty(t, listed.Other)
	assert.Empty(t, listed.Completed)

	// Toggling the only occurrence completes the routine.
	w = doJSON(t, r, http.MethodPost, "/routines/"+created.ID.String()+"/toggle", `{"time":"09:00"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/routines", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Empty(t, listed.Today)
	require.Len(t, listed.Completed, 1)
	require.NotNil(t, listed.Completed[0].CompletionDate)
}

func TestDeleteRoutine(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/routines", `{"title":"Workout","days":["Mon"],"times":["09:00"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var created model.Routine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodDelete, "/routines/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/routines", "")
	var listed struct {
		Today []model.Routine `json:"today"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Empty(t, listed.Today)
}

func TestUpdateRoutine_BadIDRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/routines/not-a-uuid", `{"title":"Workout","days":["Mon"],"times":["09:00"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
