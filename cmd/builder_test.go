package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskflow/config"
	"taskflow/infrastructure/persistence/memory"
	"taskflow/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Name: "taskflow", Version: "test", Env: "test"},
		Server: config.ServerConfig{Port: "0", ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			Type:     config.DatabaseMemory,
			LogLevel: "silent",
			Retry:    config.RetryConfig{Enabled: true, MaxAttempts: 2},
		},
		Log: config.LogConfig{Level: "error", Format: "json", Output: "stdout"},
	}
}

func restoreLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(logger.Replace(logger.Get()))
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBuildMemoryStore(t *testing.T) {
	restoreLogger(t)

	app, err := NewBuilder(testConfig(t)).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if app.db != nil {
		t.Error("memory store should not open a database")
	}

	if w := serve(t, app.Handler(), http.MethodPost, "/api/tasks", `{"title":"built"}`); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	if w := serve(t, app.Handler(), http.MethodGet, "/api/health/ready", ""); w.Code != http.StatusOK {
		t.Errorf("ready status = %d", w.Code)
	}
}

func TestBuildSQLiteStore(t *testing.T) {
	restoreLogger(t)

	cfg := testConfig(t)
	cfg.Database.Type = config.DatabaseSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "tasks.db")
	cfg.Database.AutoMigrate = true

	app, err := NewBuilder(cfg).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { closeDB(app.db) })
	if app.db == nil {
		t.Fatal("sqlite store should open a database")
	}

	w := serve(t, app.Handler(), http.MethodPost, "/api/tasks", `{"title":"durable"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	location := w.Header().Get("Location")

	if w := serve(t, app.Handler(), http.MethodPost, location+"/complete", ""); w.Code != http.StatusNoContent {
		t.Fatalf("complete status = %d, body %s", w.Code, w.Body.String())
	}
	if w := serve(t, app.Handler(), http.MethodGet, location, ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"is_completed":true`) {
		t.Errorf("get after complete = %d %s", w.Code, w.Body.String())
	}
	if w := serve(t, app.Handler(), http.MethodGet, "/api/health", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestWithRepositoryOverridesStore(t *testing.T) {
	restoreLogger(t)

	repo := memory.NewTaskRepository()
	cfg := testConfig(t)
	cfg.Database.Type = config.DatabasePostgres

	app, err := NewBuilder(cfg).WithRepository(repo).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	serve(t, app.Handler(), http.MethodPost, "/api/tasks", `{"title":"injected"}`)
	if repo.Len() != 1 {
		t.Errorf("injected repository holds %d tasks, want 1", repo.Len())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	restoreLogger(t)

	app, err := NewBuilder(testConfig(t)).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after graceful shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
