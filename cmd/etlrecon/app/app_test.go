package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/etlrecon/pkg/project"
)

// chdir changes the working directory to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	chdir(t, t.TempDir())

	logger := zerolog.Nop()
	opts = append([]Option{WithLogger(&logger)}, opts...)
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	if app.Workers() != 1 {
		t.Errorf("Workers() = %d, want 1", app.Workers())
	}
}

// TestApp_Projects verifies lazy loading of the projects file.
func TestApp_Projects(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.Projects(); err == nil {
		t.Fatal("Projects() succeeded without a projects file")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "projects.yaml")
	if err := os.WriteFile(path, []byte("projects:\n  chama: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app.Config().ProjectsFile = path

	first, err := app.Projects()
	if err != nil {
		t.Fatalf("Projects() failed: %v", err)
	}
	second, err := app.Projects()
	if err != nil {
		t.Fatalf("Projects() failed on second call: %v", err)
	}
	if first != second {
		t.Error("Projects() returned different instances, expected the cached one")
	}
	if _, ok := first.Projects["chama"]; !ok {
		t.Error("project chama not loaded")
	}
}

// TestApp_ExecuteProjects runs the projects command through the root command.
func TestApp_ExecuteProjects(t *testing.T) {
	cfg, err := project.Parse([]byte("projects:\n  chama:\n    description: Chama ETL\n"), "/data")
	if err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, WithProjects(cfg))

	var out bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"projects", "-o", "json"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("projects failed: %v", err)
	}
	if !strings.Contains(out.String(), `"description": "Chama ETL"`) {
		t.Errorf("unexpected output: %s", out.String())
	}
}

// TestApp_ExecuteInvalidFormat verifies the format is validated up front.
func TestApp_ExecuteInvalidFormat(t *testing.T) {
	app := newTestApp(t)
	if err := app.Execute(context.Background(), []string{"version", "-o", "xml"}); err == nil {
		t.Error("Execute() accepted an invalid format")
	}
}

// TestApp_ExecuteVersionAndMan checks the utility commands.
func TestApp_ExecuteVersionAndMan(t *testing.T) {
	app := newTestApp(t)

	var out bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version", "-v"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "etlrecon 1.0.0") || !strings.Contains(out.String(), "abc123") {
		t.Errorf("unexpected version output: %s", out.String())
	}

	out.Reset()
	root = app.createRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"man"})
	if err := root.Execute(); err != nil {
		t.Fatalf("man failed: %v", err)
	}
	if !strings.Contains(out.String(), "ETLRECON") {
		t.Errorf("man page missing title")
	}
}
