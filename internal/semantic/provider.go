// Package semantic adapts a workspace of SCIP indexes to the call hierarchy
// pipeline's provider and factory interfaces.
package semantic

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/blake2b"

	"callroot/internal/backends/scip"
	"callroot/internal/callhierarchy"
	cerrors "callroot/internal/errors"
	"callroot/internal/paths"
	"callroot/internal/slogutil"
	"callroot/internal/workspace"
)

// ProviderOptions configure a Provider
type ProviderOptions struct {
	// PositionEncoding overrides the encoding documents declare. Empty trusts
	// the index and falls back to utf-8 when a document declares none.
	PositionEncoding string
	Logger           *slog.Logger
}

// Provider answers snapshot and binding queries from workspace indexes
type Provider struct {
	ws       *workspace.Workspace
	encoding string
	logger   *slog.Logger
}

// NewProvider creates a Provider over ws
func NewProvider(ws *workspace.Workspace, opts ProviderOptions) *Provider {
	return &Provider{
		ws:       ws,
		encoding: opts.PositionEncoding,
		logger:   slogutil.OrDiscard(opts.Logger),
	}
}

// snapshot pins one version of a document's text to its project
type snapshot struct {
	id      callhierarchy.SnapshotID
	project callhierarchy.ProjectID
	path    string
	lines   *lineIndex
}

func (s *snapshot) ID() callhierarchy.SnapshotID     { return s.id }
func (s *snapshot) Project() callhierarchy.ProjectID { return s.project }
func (s *snapshot) Len() int                         { return len(s.lines.content) }

// Snapshot resolves the owning project and captures the document text. It
// returns nil when no project contains the document.
func (p *Provider) Snapshot(ctx context.Context, doc callhierarchy.DocumentRef) (callhierarchy.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	project, ok := p.ws.ProjectForPath(doc.Path)
	if !ok {
		p.logger.Debug("Document outside every project", "path", doc.Path)
		return nil, nil
	}
	rel, err := p.ws.RelativePath(project, doc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document path: %w", err)
	}

	content := doc.Content
	if content == nil {
		content, err = os.ReadFile(paths.ResolveAgainst(p.ws.Root(), doc.Path))
		if err != nil {
			return nil, cerrors.New(cerrors.DocumentNotFound, fmt.Sprintf("cannot read %s", doc.Path), err)
		}
	}

	return &snapshot{
		id:      fingerprint(project.ID, rel, content),
		project: callhierarchy.ProjectID(project.ID),
		path:    rel,
		lines:   newLineIndex(content),
	}, nil
}

// Bindings returns the index occurrences touching offset as byte spans
func (p *Provider) Bindings(ctx context.Context, snap callhierarchy.Snapshot, offset int) ([]callhierarchy.Binding, error) {
	s, ok := snap.(*snapshot)
	if !ok {
		return nil, fmt.Errorf("snapshot %T was not created by this provider", snap)
	}

	idx, err := p.ws.Index(ctx, string(s.project))
	if err != nil {
		return nil, err
	}
	doc := idx.Document(s.path)
	if doc == nil {
		p.logger.Debug("Document not in index", "project", string(s.project), "path", s.path)
		return nil, nil
	}

	encoding := p.encodingFor(doc)
	line, char := s.lines.position(offset, encoding)

	var bindings []callhierarchy.Binding
	for _, occ := range doc.OccurrencesAt(line, char) {
		r, ok := scip.ParseRange(occ.Range)
		if !ok {
			continue
		}
		bindings = append(bindings, callhierarchy.Binding{
			Symbol: callhierarchy.SymbolID(occ.Symbol),
			Span: callhierarchy.Span{
				Start: s.lines.offset(r.StartLine, r.StartChar, encoding),
				End:   s.lines.offset(r.EndLine, r.EndChar, encoding),
			},
			Definition: occ.IsDefinition(),
		})
	}
	return bindings, nil
}

func (p *Provider) encodingFor(doc *scip.Document) string {
	if p.encoding != "" {
		return p.encoding
	}
	if doc.PositionEncoding != "" {
		return doc.PositionEncoding
	}
	return scip.EncodingUTF8
}

// fingerprint derives a snapshot ID from the project, path and text
func fingerprint(project, path string, content []byte) callhierarchy.SnapshotID {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(project))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return callhierarchy.SnapshotID(hex.EncodeToString(h.Sum(nil)[:16]))
}
