package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
)

// taskServer is a small in-memory /api/task endpoint.
type taskServer struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Task
}

func newTaskServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := &taskServer{nextID: 1, rows: map[int64]domain.Task{}}
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)
	return srv
}

func (s *taskServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var req struct {
		ID          *int64       `json:"id"`
		TaskName    string       `json:"task_name"`
		Description string       `json:"description"`
		DueDate     *domain.Date `json:"due_date"`
		Tag         string       `json:"tag"`
	}
	if r.Method != http.MethodGet {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	w.Header().Set("Content-Type", "application/json")
	notFound := func() {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Task not found"})
	}

	switch r.Method {
	case http.MethodGet:
		list := make([]domain.Task, 0, len(s.rows))
		for _, t := range s.rows {
			list = append(list, t)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
		_ = json.NewEncoder(w).Encode(list)
	case http.MethodPost:
		t := domain.Task{ID: s.nextID, Name: req.TaskName, Description: req.Description, DueDate: req.DueDate, Tag: req.Tag}
		s.nextID++
		s.rows[t.ID] = t
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(t)
	case http.MethodPut:
		if req.ID == nil {
			notFound()
			return
		}
		if _, ok := s.rows[*req.ID]; !ok {
			notFound()
			return
		}
		t := domain.Task{ID: *req.ID, Name: req.TaskName, Description: req.Description, DueDate: req.DueDate, Tag: req.Tag}
		s.rows[t.ID] = t
		_ = json.NewEncoder(w).Encode(t)
	case http.MethodDelete:
		if req.ID == nil {
			notFound()
			return
		}
		t, ok := s.rows[*req.ID]
		if !ok {
			notFound()
			return
		}
		delete(s.rows, t.ID)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Task deleted", "task": t})
	}
}

// clearEnv leaves the identity provider unconfigured.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MYDAY_CONFIG", "MYDAY_API_URL",
		"SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL",
		"SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY",
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, apiURL, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--api-url", apiURL,
		"--session-file", filepath.Join(t.TempDir(), "session.json"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestTasksCommands(t *testing.T) {
	clearEnv(t)
	srv := newTaskServer(t)

	out, err := execute(t, srv.URL, "", "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")

	out, err = execute(t, srv.URL, "", "tasks", "add", "Buy milk", "--due", "2025-01-01", "--tag", "Personal")
	require.NoError(t, err)
	assert.Contains(t, out, "Added task 1: Buy milk")

	_, err = execute(t, srv.URL, "", "tasks", "add", "Walk dog", "-d", "around the block")
	require.NoError(t, err)

	out, err = execute(t, srv.URL, "", "tasks", "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Walk dog"), strings.Index(out, "Buy milk"), "newest first")
	assert.Contains(t, out, "2025-01-01")
	assert.Contains(t, out, "Personal")

	out, err = execute(t, srv.URL, "", "tasks", "edit", "1", "--name", "Buy oat milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated task 1: Buy oat milk")

	out, err = execute(t, srv.URL, "", "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy oat milk")
	assert.Contains(t, out, "2025-01-01", "fields without a flag are kept")

	out, err = execute(t, srv.URL, "n\n", "tasks", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = execute(t, srv.URL, "y\n", "tasks", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task 1")

	_, err = execute(t, srv.URL, "", "tasks", "rm", "1", "--yes")
	assert.ErrorContains(t, err, "task is not in the list")
}

func TestTasksCommands_BadInput(t *testing.T) {
	clearEnv(t)
	srv := newTaskServer(t)

	_, err := execute(t, srv.URL, "", "tasks", "edit", "abc")
	assert.ErrorContains(t, err, `invalid task id "abc"`)

	_, err = execute(t, srv.URL, "", "tasks", "add", "x", "--due", "soon")
	assert.ErrorContains(t, err, "invalid date")
}

func TestTasksCommands_ServerDown(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "http://127.0.0.1:1", "", "tasks", "list")
	assert.ErrorContains(t, err, "failed to fetch tasks")
}

func TestAccountCommands_NotConfigured(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "http://127.0.0.1:1", "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Authentication is not configured")

	_, err = execute(t, "http://127.0.0.1:1", "", "login", "--email", "a@b.c", "--password", "secret")
	assert.EqualError(t, err, "identity provider is not properly configured")

	out, err = execute(t, "http://127.0.0.1:1", "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
}

func TestSetPassword_Validation(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "http://127.0.0.1:1", "abcdef\nabcdeg\n", "set-password")
	assert.EqualError(t, err, "Passwords do not match")
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
