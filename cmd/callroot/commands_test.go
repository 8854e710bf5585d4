package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"callroot/internal/config"
	cerrors "callroot/internal/errors"
	"callroot/internal/storage"
	"callroot/internal/workspace"
)

func TestLogLevel(t *testing.T) {
	cfg := config.DefaultConfig()

	if got := logLevel(cfg, 0, false); got != slog.LevelWarn {
		t.Errorf("logLevel(config warn) = %v, want WARN", got)
	}
	cfg.Logging.Level = "debug"
	if got := logLevel(cfg, 0, false); got != slog.LevelDebug {
		t.Errorf("logLevel(config debug) = %v, want DEBUG", got)
	}
	if got := logLevel(cfg, 1, false); got != slog.LevelInfo {
		t.Errorf("logLevel(-v) = %v, want INFO", got)
	}
	if got := logLevel(cfg, 0, true); got <= slog.LevelError {
		t.Errorf("logLevel(--quiet) = %v, want above ERROR", got)
	}
}

func TestCheckRedirectProjects(t *testing.T) {
	m := workspace.NewManifest("test")
	if _, err := m.AddProject("app", "app", "", workspace.KindSource, "go"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddProject("deps", "deps", "", workspace.KindMetadata, ""); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		from, to string
		wantCode cerrors.ErrorCode
	}{
		{"wildcard to source", storage.AnyProject, "app", ""},
		{"metadata to source", "deps", "app", ""},
		{"unknown target", storage.AnyProject, "lib", cerrors.ProjectNotFound},
		{"metadata target", storage.AnyProject, "deps", cerrors.WorkspaceInvalid},
		{"unknown origin", "nope", "app", cerrors.ProjectNotFound},
		{"source origin", "app", "app", cerrors.WorkspaceInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRedirectProjects(m, tt.from, tt.to)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !cerrors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("callroot %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestWorkspaceAndRedirectCommands(t *testing.T) {
	root := t.TempDir()

	out := execute(t, "--root", root, "--quiet", "workspace", "init", "--name", "demo")
	if !strings.Contains(out, `Initialized workspace "demo"`) {
		t.Errorf("init output = %q", out)
	}

	execute(t, "--root", root, "--quiet", "workspace", "add", "app", "app", "--kind", "source", "--language", "go")
	execute(t, "--root", root, "--quiet", "workspace", "add", "deps", "deps", "--kind", "metadata", "--language", "")

	out = execute(t, "--root", root, "--quiet", "workspace", "list")
	for _, want := range []string{"NAME", "app", "deps", "metadata", "missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	execute(t, "--root", root, "--quiet", "redirect", "add", "from-sym", "to-sym", "--from-project", "deps", "--to-project", "app", "--reason", "pinned")
	out = execute(t, "--root", root, "--quiet", "redirect", "list")
	if !strings.Contains(out, "from-sym") || !strings.Contains(out, "pinned") {
		t.Errorf("redirect list output = %q", out)
	}

	out = execute(t, "--root", root, "--quiet", "workspace", "remove", "app")
	if !strings.Contains(out, `Deleted 1 redirect(s) targeting "app"`) {
		t.Errorf("remove output = %q", out)
	}
	out = execute(t, "--root", root, "--quiet", "redirect", "list")
	if !strings.Contains(out, "No redirects stored.") {
		t.Errorf("redirect list after remove = %q", out)
	}
}
