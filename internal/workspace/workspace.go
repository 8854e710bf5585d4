package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"callroot/internal/backends/scip"
	cerrors "callroot/internal/errors"
	"callroot/internal/paths"
	"callroot/internal/slogutil"
)

// Project is a manifest entry with its paths resolved
type Project struct {
	ID        string
	UID       string
	Root      string
	IndexPath string
	Kind      ProjectKind
	Language  string
}

// IsMetadata reports whether the project only holds metadata views
func (p *Project) IsMetadata() bool {
	return p.Kind == KindMetadata
}

// Options tune how a Workspace resolves projects
type Options struct {
	// DefaultIndexPath is used for projects whose manifest entry has no index
	DefaultIndexPath string
	Logger           *slog.Logger
}

// IndexLoader reads a SCIP index from disk
type IndexLoader func(path string) (*scip.Index, error)

// Workspace is the runtime view of a manifest. Indexes load lazily and are
// cached for the life of the Workspace; concurrent first loads of the same
// project share one read.
type Workspace struct {
	root     string
	manifest *Manifest
	projects []*Project
	byID     map[string]*Project
	logger   *slog.Logger
	load     IndexLoader

	mu      sync.RWMutex
	indexes map[string]*scip.Index
	group   singleflight.Group
}

// New builds a Workspace rooted at root from an already loaded manifest
func New(root string, manifest *Manifest, opts Options) (*Workspace, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	w := &Workspace{
		root:     absRoot,
		manifest: manifest,
		byID:     make(map[string]*Project, len(manifest.Projects)),
		logger:   slogutil.OrDiscard(opts.Logger),
		load:     scip.LoadIndex,
		indexes:  make(map[string]*scip.Index),
	}
	for _, pc := range manifest.Projects {
		projectRoot := paths.ResolveAgainst(absRoot, pc.Root)
		indexPath := pc.Index
		if indexPath == "" {
			indexPath = opts.DefaultIndexPath
		}
		p := &Project{
			ID:        pc.Name,
			UID:       pc.UID,
			Root:      filepath.Clean(projectRoot),
			IndexPath: paths.ResolveAgainst(projectRoot, indexPath),
			Kind:      pc.Kind,
			Language:  pc.Language,
		}
		w.projects = append(w.projects, p)
		w.byID[p.ID] = p
	}
	return w, nil
}

// Open loads the manifest at manifestPath and builds a Workspace
func Open(root, manifestPath string, opts Options) (*Workspace, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	return New(root, manifest, opts)
}

// Root returns the absolute workspace root
func (w *Workspace) Root() string {
	return w.root
}

// Manifest returns the manifest the workspace was built from
func (w *Workspace) Manifest() *Manifest {
	return w.manifest
}

// SetIndexLoader replaces the function used to read indexes from disk
func (w *Workspace) SetIndexLoader(load IndexLoader) {
	w.load = load
}

// Project returns a project by ID
func (w *Workspace) Project(id string) (*Project, bool) {
	p, ok := w.byID[id]
	return p, ok
}

// Projects returns all projects in manifest order
func (w *Workspace) Projects() []*Project {
	out := make([]*Project, len(w.projects))
	copy(out, w.projects)
	return out
}

// SourceProjects returns source projects in manifest order
func (w *Workspace) SourceProjects() []*Project {
	var out []*Project
	for _, p := range w.projects {
		if !p.IsMetadata() {
			out = append(out, p)
		}
	}
	return out
}

// ProjectForPath returns the project owning path. Nested roots resolve to the
// deepest one. Relative paths are taken against the workspace root.
func (w *Workspace) ProjectForPath(path string) (*Project, bool) {
	abs := paths.ResolveAgainst(w.root, path)

	var best *Project
	for _, p := range w.projects {
		if !paths.IsWithinRoot(abs, p.Root) {
			continue
		}
		if best == nil || len(p.Root) > len(best.Root) {
			best = p
		}
	}
	return best, best != nil
}

// RelativePath returns path relative to the project root with forward
// slashes, the form SCIP documents are keyed by.
func (w *Workspace) RelativePath(p *Project, path string) (string, error) {
	return paths.CanonicalizePath(paths.ResolveAgainst(w.root, path), p.Root)
}

// SetIndex installs an already loaded index for a project
func (w *Workspace) SetIndex(id string, idx *scip.Index) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.indexes[id] = idx
}

// Index returns the project's index, loading it on first use
func (w *Workspace) Index(ctx context.Context, id string) (*scip.Index, error) {
	p, ok := w.byID[id]
	if !ok {
		return nil, cerrors.New(cerrors.ProjectNotFound, fmt.Sprintf("project %q is not in the workspace", id), nil)
	}

	w.mu.RLock()
	idx, cached := w.indexes[id]
	w.mu.RUnlock()
	if cached {
		return idx, nil
	}

	ch := w.group.DoChan(id, func() (interface{}, error) {
		start := time.Now()
		loaded, err := w.load(p.IndexPath)
		if err != nil {
			return nil, err
		}
		w.logger.Info("Loaded SCIP index",
			"project", id,
			"path", p.IndexPath,
			"documents", len(loaded.Documents),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		w.mu.Lock()
		w.indexes[id] = loaded
		w.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*scip.Index), nil
	}
}
