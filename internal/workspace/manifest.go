// Package workspace describes the projects callroot can navigate between and
// loads their SCIP indexes on demand.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	cerrors "callroot/internal/errors"
)

// ProjectKind separates projects with real sources from metadata-only ones
type ProjectKind string

const (
	// KindSource projects own the source a redirect should land in
	KindSource ProjectKind = "source"
	// KindMetadata projects hold compiled or decompiled views of dependencies
	KindMetadata ProjectKind = "metadata"
)

// Manifest is the workspace description stored in workspace.toml
type Manifest struct {
	// Name identifies the workspace in logs
	Name string `toml:"name"`

	CreatedAt time.Time `toml:"created_at"`
	UpdatedAt time.Time `toml:"updated_at"`

	// Projects keep manifest order; redirect search walks them in this order.
	Projects []ProjectConfig `toml:"projects"`
}

// ProjectConfig is one project entry in the manifest
type ProjectConfig struct {
	// UID never changes, even across renames
	UID string `toml:"uid"`

	// Name is the project identity used by the pipeline
	Name string `toml:"name"`

	// Root is relative to the workspace root unless absolute
	Root string `toml:"root"`

	// Index is the SCIP index path, relative to Root unless absolute.
	// Empty uses the configured default.
	Index string `toml:"index,omitempty"`

	Kind     ProjectKind `toml:"kind"`
	Language string      `toml:"language,omitempty"`

	AddedAt time.Time `toml:"added_at"`
}

// NewManifest creates an empty manifest
func NewManifest(name string) *Manifest {
	now := time.Now().UTC()
	return &Manifest{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Projects:  []ProjectConfig{},
	}
}

// AddProject registers a project. Names and roots must be unique.
func (m *Manifest) AddProject(name, root, index string, kind ProjectKind, language string) (*ProjectConfig, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if name == "*" {
		return nil, fmt.Errorf("project name %q is reserved", name)
	}
	if root == "" {
		return nil, fmt.Errorf("project root is required")
	}
	if !kind.valid() {
		return nil, fmt.Errorf("invalid project kind %q (want source or metadata)", kind)
	}
	for _, p := range m.Projects {
		if p.Name == name {
			return nil, fmt.Errorf("project %q already exists", name)
		}
		if filepath.Clean(p.Root) == filepath.Clean(root) {
			return nil, fmt.Errorf("project root %q already registered (as %q)", root, p.Name)
		}
	}

	project := ProjectConfig{
		UID:      uuid.New().String(),
		Name:     name,
		Root:     root,
		Index:    index,
		Kind:     kind,
		Language: language,
		AddedAt:  time.Now().UTC(),
	}
	m.Projects = append(m.Projects, project)
	m.UpdatedAt = time.Now().UTC()
	return &project, nil
}

// RemoveProject drops a project by name
func (m *Manifest) RemoveProject(name string) error {
	for i, p := range m.Projects {
		if p.Name == name {
			m.Projects = append(m.Projects[:i], m.Projects[i+1:]...)
			m.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return cerrors.New(cerrors.ProjectNotFound, fmt.Sprintf("project %q not found", name), nil)
}

// GetProject returns a project entry by name
func (m *Manifest) GetProject(name string) *ProjectConfig {
	for i := range m.Projects {
		if m.Projects[i].Name == name {
			return &m.Projects[i]
		}
	}
	return nil
}

// Validate checks that every project is complete and unique
func (m *Manifest) Validate() error {
	names := make(map[string]bool, len(m.Projects))
	uids := make(map[string]bool, len(m.Projects))
	for i, p := range m.Projects {
		switch {
		case p.Name == "":
			return invalid("projects[%d]: name is required", i)
		case p.Name == "*":
			return invalid("projects[%d]: name %q is reserved", i, p.Name)
		case p.Root == "":
			return invalid("project %q: root is required", p.Name)
		case !p.Kind.valid():
			return invalid("project %q: invalid kind %q", p.Name, p.Kind)
		case names[p.Name]:
			return invalid("duplicate project name %q", p.Name)
		}
		if p.UID != "" {
			if _, err := uuid.Parse(p.UID); err != nil {
				return invalid("project %q: uid is not a UUID: %v", p.Name, err)
			}
			if uids[p.UID] {
				return invalid("duplicate project uid %q", p.UID)
			}
			uids[p.UID] = true
		}
		names[p.Name] = true
	}
	return nil
}

// LoadManifest reads and validates a manifest. Entries missing a uid get one.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.New(cerrors.WorkspaceInvalid,
				fmt.Sprintf("workspace manifest not found at %s", path), err)
		}
		return nil, cerrors.New(cerrors.WorkspaceInvalid, "failed to parse workspace manifest", err).
			WithDetails(map[string]string{"manifest_path": path})
	}
	for i := range m.Projects {
		if m.Projects[i].UID == "" {
			m.Projects[i].UID = uuid.New().String()
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes the manifest to path, creating parent directories
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return nil
}

func (k ProjectKind) valid() bool {
	return k == KindSource || k == KindMetadata
}

func invalid(format string, args ...interface{}) error {
	return cerrors.Newf(cerrors.WorkspaceInvalid, format, args...)
}
