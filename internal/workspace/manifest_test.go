package workspace

import (
	"os"
	"path/filepath"
	"testing"

	cerrors "callroot/internal/errors"
)

func TestAddRemoveProject(t *testing.T) {
	m := NewManifest("demo")

	app, err := m.AddProject("app", "app", "index.scip", KindSource, "go")
	if err != nil {
		t.Fatalf("AddProject(app) error = %v", err)
	}
	if app.UID == "" {
		t.Error("AddProject did not assign a uid")
	}
	if _, err := m.AddProject("deps", "deps", "", KindMetadata, ""); err != nil {
		t.Fatalf("AddProject(deps) error = %v", err)
	}

	tests := []struct {
		name, pname, root string
		kind              ProjectKind
	}{
		{"duplicate name", "app", "other", KindSource},
		{"duplicate root", "other", "app/", KindSource},
		{"bad kind", "x", "x", ProjectKind("binary")},
		{"reserved name", "*", "star", KindSource},
		{"empty name", "", "y", KindSource},
		{"empty root", "z", "", KindSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.AddProject(tt.pname, tt.root, "", tt.kind, ""); err == nil {
				t.Error("AddProject succeeded, want error")
			}
		})
	}

	if err := m.RemoveProject("app"); err != nil {
		t.Fatalf("RemoveProject(app) error = %v", err)
	}
	if m.GetProject("app") != nil {
		t.Error("app still present after removal")
	}
	if err := m.RemoveProject("app"); !cerrors.Is(err, cerrors.ProjectNotFound) {
		t.Errorf("RemoveProject(missing) error = %v, want PROJECT_NOT_FOUND", err)
	}
}

func TestManifestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".callroot", "workspace.toml")

	m := NewManifest("demo")
	src, _ := m.AddProject("app", "src/app", "build/index.scip", KindSource, "go")
	if _, err := m.AddProject("deps", "/opt/deps", "", KindMetadata, ""); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if loaded.Name != "demo" || len(loaded.Projects) != 2 {
		t.Fatalf("LoadManifest() = %+v", loaded)
	}
	got := loaded.Projects[0]
	if got.Name != "app" || got.UID != src.UID || got.Index != "build/index.scip" || got.Kind != KindSource {
		t.Errorf("Projects[0] = %+v", got)
	}
	if loaded.Projects[1].Kind != KindMetadata {
		t.Errorf("Projects[1].Kind = %q", loaded.Projects[1].Kind)
	}
}

func TestLoadManifest_AssignsMissingUIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.toml")
	content := `name = "hand-written"

[[projects]]
name = "app"
root = "."
kind = "source"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Projects[0].UID == "" {
		t.Error("missing uid was not filled in")
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadManifest(filepath.Join(dir, "missing.toml")); !cerrors.Is(err, cerrors.WorkspaceInvalid) {
		t.Errorf("missing manifest error = %v, want WORKSPACE_INVALID", err)
	}

	cases := map[string]string{
		"syntax.toml":  "name = [",
		"badkind.toml": "[[projects]]\nname = \"a\"\nroot = \".\"\nkind = \"other\"\n",
		"dupe.toml":    "[[projects]]\nname = \"a\"\nroot = \"x\"\nkind = \"source\"\n[[projects]]\nname = \"a\"\nroot = \"y\"\nkind = \"source\"\n",
		"baduid.toml":  "[[projects]]\nuid = \"nope\"\nname = \"a\"\nroot = \".\"\nkind = \"source\"\n",
		"noroot.toml":  "[[projects]]\nname = \"a\"\nkind = \"source\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadManifest(path); !cerrors.Is(err, cerrors.WorkspaceInvalid) {
				t.Errorf("LoadManifest(%s) error = %v, want WORKSPACE_INVALID", name, err)
			}
		})
	}
}
