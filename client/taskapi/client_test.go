package taskapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bijaykarki4742/summer-class-web/client/tasklist"
	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ tasklist.Service = (*Client)(nil)

// fakeServer mimics the /api/task handlers over an in-memory table.
type fakeServer struct {
	server  *httptest.Server
	mu      sync.Mutex
	nextID  int64
	tasks   map[int64]domain.Task
	failAll bool
	auth    []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{nextID: 1, tasks: map[int64]domain.Task{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

type wireTask struct {
	ID          *int64       `json:"id"`
	TaskName    string       `json:"task_name"`
	Description string       `json:"description"`
	DueDate     *domain.Date `json:"due_date"`
	Tag         string       `json:"tag"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	if r.URL.Path != "/api/task" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Cannot " + r.Method + " " + r.URL.Path})
		return
	}
	if f.failAll {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch tasks"})
		return
	}

	var req wireTask
	if r.Method != http.MethodGet {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "bad body"})
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		list := make([]domain.Task, 0, len(f.tasks))
		for _, t := range f.tasks {
			list = append(list, t)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		t := domain.Task{ID: f.nextID, Name: req.TaskName, Description: req.Description, DueDate: req.DueDate, Tag: req.Tag}
		f.nextID++
		f.tasks[t.ID] = t
		writeJSON(w, http.StatusCreated, t)
	case http.MethodPut:
		if req.ID == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Task not found"})
			return
		}
		if _, ok := f.tasks[*req.ID]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Task not found"})
			return
		}
		t := domain.Task{ID: *req.ID, Name: req.TaskName, Description: req.Description, DueDate: req.DueDate, Tag: req.Tag}
		f.tasks[t.ID] = t
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		if req.ID == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Task not found"})
			return
		}
		t, ok := f.tasks[*req.ID]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Task not found"})
			return
		}
		delete(f.tasks, t.ID)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Task deleted", "task": t})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
	}
}

func TestClient_Scenario(t *testing.T) {
	f := newFakeServer(t)
	c := New(f.server.URL, WithTimeout(2*time.Second))
	ctx := context.Background()

	created, err := c.Create(ctx, domain.Draft{
		Name:        "A",
		Description: "d",
		DueDate:     domain.NewDate(2025, time.January, 1),
		Tag:         "Work",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "A", created.Name)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2025-01-01", created.DueDate.String())
	assert.Equal(t, "Work", created.Tag)

	_, err = c.Create(ctx, domain.Draft{Name: "second"})
	require.NoError(t, err)

	tasks, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Name)
	assert.Nil(t, tasks[0].DueDate)

	updated, err := c.Update(ctx, created.ID, domain.Draft{Name: "B", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Nil(t, updated.DueDate)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", deleted.Name)

	_, err = c.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Update(ctx, 99, domain.Draft{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ListEmpty(t *testing.T) {
	f := newFakeServer(t)
	c := New(f.server.URL)

	tasks, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestClient_ServerError(t *testing.T) {
	f := newFakeServer(t)
	f.failAll = true
	c := New(f.server.URL)

	_, err := c.List(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to fetch tasks", apiErr.Message)
}

func TestClient_TokenSource(t *testing.T) {
	f := newFakeServer(t)
	c := New(f.server.URL, WithTokenSource(func(context.Context) (string, error) {
		return "access-1", nil
	}))

	_, err := c.List(context.Background())
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{"Bearer access-1"}, f.auth)
}

func TestClient_TokenSourceError(t *testing.T) {
	f := newFakeServer(t)
	wantErr := assert.AnError
	c := New(f.server.URL, WithTokenSource(func(context.Context) (string, error) {
		return "", wantErr
	}))

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, wantErr)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Empty(t, f.auth, "no request should be sent without a token")
}

func TestClient_DeadlinePassedDuringTokenFetch(t *testing.T) {
	f := newFakeServer(t)
	c := New(f.server.URL, WithTokenSource(func(context.Context) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "tok", nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Empty(t, f.auth, "no request should be sent after the deadline")
}

func TestClient_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", WithTimeout(time.Second))

	_, err := c.List(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.NotErrorAs(t, err, &apiErr)
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", 500, `{"error":"Error creating task"}`, "Error creating task"},
		{"message field", 401, `{"success":false,"message":"nope"}`, "nope"},
		{"not json", 502, `<html>`, "Bad Gateway"},
		{"empty object", 503, `{}`, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAPIError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.want, got.Message)
		})
	}
}
