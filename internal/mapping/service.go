// Package mapping resolves symbols seen in metadata projects to their
// source-backed counterparts.
package mapping

import (
	"context"
	"log/slog"

	"callroot/internal/backends/scip"
	"callroot/internal/callhierarchy"
	cerrors "callroot/internal/errors"
	"callroot/internal/slogutil"
	"callroot/internal/storage"
	"callroot/internal/workspace"
)

// RedirectStore looks up explicit redirects. storage.RedirectRepository
// implements it.
type RedirectStore interface {
	Get(ctx context.Context, symbol, project string) (*storage.Redirect, error)
}

// Service implements callhierarchy.SymbolMappingService over a workspace
type Service struct {
	ws        *workspace.Workspace
	redirects RedirectStore
	logger    *slog.Logger
}

// NewService creates a mapping service. redirects may be nil.
func NewService(ws *workspace.Workspace, redirects RedirectStore, logger *slog.Logger) *Service {
	return &Service{
		ws:        ws,
		redirects: redirects,
		logger:    slogutil.OrDiscard(logger),
	}
}

// MapSymbol maps one hop. Symbols in source projects are already canonical.
// Symbols in metadata projects follow an explicit redirect if one is stored,
// then the first source project (manifest order) defining the same symbol,
// then the first defining it under another package version.
func (s *Service) MapSymbol(ctx context.Context, symbol callhierarchy.SymbolID, project callhierarchy.ProjectID) (callhierarchy.Mapping, error) {
	p, ok := s.ws.Project(string(project))
	if !ok {
		s.logger.Debug("Mapping requested for unknown project", "project", string(project))
		return callhierarchy.Mapping{}, nil
	}
	if !p.IsMetadata() {
		return callhierarchy.Mapping{Symbol: symbol, Project: project, Found: true}, nil
	}

	id := string(symbol)
	if s.redirects != nil {
		r, err := s.redirects.Get(ctx, id, p.ID)
		if err != nil {
			return callhierarchy.Mapping{}, err
		}
		if r != nil {
			s.logger.Debug("Using stored redirect",
				"symbol", id,
				"to_symbol", r.ToSymbol,
				"to_project", r.ToProject,
			)
			return callhierarchy.Mapping{
				Symbol:  callhierarchy.SymbolID(r.ToSymbol),
				Project: callhierarchy.ProjectID(r.ToProject),
				Found:   true,
			}, nil
		}
	}

	if scip.IsLocalSymbol(id) {
		return callhierarchy.Mapping{}, nil
	}

	var indexed []sourceIndex
	for _, sp := range s.ws.SourceProjects() {
		idx, err := s.ws.Index(ctx, sp.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return callhierarchy.Mapping{}, ctxErr
			}
			if cerrors.Is(err, cerrors.IndexMissing) {
				s.logger.Debug("Skipping source project without index", "project", sp.ID)
				continue
			}
			return callhierarchy.Mapping{}, err
		}
		if idx.Defines(id) {
			return found(id, sp.ID), nil
		}
		indexed = append(indexed, sourceIndex{project: sp.ID, idx: idx})
	}

	for _, si := range indexed {
		if match, ok := si.idx.FindVersionless(id); ok {
			s.logger.Debug("Matched symbol across package versions",
				"symbol", id,
				"match", match,
				"project", si.project,
			)
			return found(match, si.project), nil
		}
	}
	return callhierarchy.Mapping{}, nil
}

type sourceIndex struct {
	project string
	idx     *scip.Index
}

func found(symbol, project string) callhierarchy.Mapping {
	return callhierarchy.Mapping{
		Symbol:  callhierarchy.SymbolID(symbol),
		Project: callhierarchy.ProjectID(project),
		Found:   true,
	}
}
