package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"callroot/internal/backends/scip"
	"callroot/internal/callhierarchy"
	"callroot/internal/paths"
	"callroot/internal/slogutil"
	"callroot/internal/workspace"
)

// DefaultMaxNodes bounds how many callers or callees one expansion returns
const DefaultMaxNodes = 100

// FactoryOptions configure a Factory
type FactoryOptions struct {
	// MaxNodes caps each expansion; zero uses DefaultMaxNodes
	MaxNodes int
	Logger   *slog.Logger
}

// Factory builds call hierarchy nodes from workspace indexes
type Factory struct {
	ws       *workspace.Workspace
	maxNodes int
	logger   *slog.Logger

	mu     sync.Mutex
	bodies map[string]*syntaxBodies
}

// NewFactory creates a Factory over ws
func NewFactory(ws *workspace.Workspace, opts FactoryOptions) *Factory {
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &Factory{
		ws:       ws,
		maxNodes: maxNodes,
		logger:   slogutil.OrDiscard(opts.Logger),
		bodies:   make(map[string]*syntaxBodies),
	}
}

// CreateItem returns a root node for symbol, or nil when the project is not
// in the workspace, its index has never seen the symbol, or the symbol is not
// a callable member.
func (f *Factory) CreateItem(ctx context.Context, symbol callhierarchy.SymbolID, project callhierarchy.ProjectID) (*callhierarchy.Node, error) {
	return f.createItem(ctx, symbol, project, nil)
}

func (f *Factory) createItem(ctx context.Context, symbol callhierarchy.SymbolID, project callhierarchy.ProjectID, calls []callhierarchy.Location) (*callhierarchy.Node, error) {
	p, ok := f.ws.Project(string(project))
	if !ok {
		f.logger.Debug("Project no longer in workspace", "project", string(project))
		return nil, nil
	}
	idx, err := f.ws.Index(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	id := string(symbol)
	if !idx.Knows(id) {
		f.logger.Debug("Symbol unknown to project index", "symbol", id, "project", p.ID)
		return nil, nil
	}
	kind := idx.SymbolKind(id)
	if !kind.IsMember() {
		f.logger.Debug("Symbol is not a member", "symbol", id, "kind", string(kind))
		return nil, nil
	}

	spec := callhierarchy.NodeSpec{
		Symbol:     symbol,
		Project:    project,
		Label:      scip.DisplayLabel(id),
		Kind:       string(kind),
		Detail:     detail(id, p),
		KnownCalls: calls,
	}
	if loc, ok := idx.Definition(id); ok {
		converted := f.location(p, *loc)
		spec.Location = &converted
	}
	return callhierarchy.NewNode(spec, callhierarchy.ExpanderFunc(f.expand)), nil
}

// expand computes a node's callers or callees within its own project
func (f *Factory) expand(ctx context.Context, node *callhierarchy.Node, direction callhierarchy.Direction) ([]callhierarchy.CallEdge, error) {
	p, ok := f.ws.Project(string(node.Project()))
	if !ok {
		return nil, nil
	}
	idx, err := f.ws.Index(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var related []*scip.CallGraphNode
	switch direction {
	case callhierarchy.DirectionCallers:
		related, err = idx.FindCallers(ctx, string(node.Symbol()), f.bodiesFor(p))
	case callhierarchy.DirectionCallees:
		related, err = idx.FindCallees(ctx, string(node.Symbol()), f.bodiesFor(p))
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	if err != nil {
		return nil, err
	}
	if len(related) > f.maxNodes {
		f.logger.Debug("Truncating call edges",
			"symbol", string(node.Symbol()),
			"direction", string(direction),
			"found", len(related),
			"limit", f.maxNodes,
		)
		related = related[:f.maxNodes]
	}

	edges := make([]callhierarchy.CallEdge, 0, len(related))
	for _, r := range related {
		sites := make([]callhierarchy.Location, 0, len(r.CallSites))
		for _, site := range r.CallSites {
			sites = append(sites, f.location(p, site))
		}
		child, err := f.createItem(ctx, callhierarchy.SymbolID(r.SymbolID), node.Project(), sites)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		edges = append(edges, callhierarchy.CallEdge{Node: child, Sites: sites})
	}
	return edges, nil
}

func (f *Factory) bodiesFor(p *workspace.Project) scip.BodyResolver {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bodies[p.ID]
	if !ok {
		b = newSyntaxBodies(p.Root, f.logger)
		f.bodies[p.ID] = b
	}
	return b
}

// detail names where the symbol lives: its package when the identifier
// carries one, otherwise the project.
func detail(id string, p *workspace.Project) string {
	if parsed, err := scip.ParseSCIPIdentifier(id); err == nil && !parsed.Local && parsed.Package != "" && parsed.Package != "." {
		return parsed.Package
	}
	return p.ID
}

// location rewrites a project-relative index location to be relative to the
// workspace root.
func (f *Factory) location(p *workspace.Project, loc scip.Location) callhierarchy.Location {
	path := loc.Path
	if rel, err := paths.CanonicalizePath(paths.JoinRootPath(p.Root, loc.Path), f.ws.Root()); err == nil {
		path = rel
	}
	return callhierarchy.Location{
		Path:        path,
		StartLine:   loc.StartLine,
		StartColumn: loc.StartColumn,
		EndLine:     loc.EndLine,
		EndColumn:   loc.EndColumn,
	}
}
