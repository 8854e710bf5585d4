package callhierarchy

import (
	"context"
	"log/slog"
	"strings"

	cerrors "callroot/internal/errors"
	"callroot/internal/slogutil"
)

// Locator finds the symbol bound at a caret offset
type Locator struct {
	provider SemanticProvider
	logger   *slog.Logger
}

// NewLocator creates a locator over provider
func NewLocator(provider SemanticProvider, logger *slog.Logger) *Locator {
	return &Locator{provider: provider, logger: slogutil.OrDiscard(logger)}
}

// Locate returns the innermost symbol covering offset in snap, or nil when
// the caret is not on a symbol. Offsets outside [0, snap.Len()] yield nil.
func (l *Locator) Locate(ctx context.Context, snap Snapshot, offset int) (*LocatedSymbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	if offset < 0 || offset > snap.Len() {
		l.logger.Debug("Caret outside document",
			"snapshot", string(snap.ID()),
			"offset", offset,
			"length", snap.Len(),
		)
		return nil, nil
	}

	bindings, err := l.provider.Bindings(ctx, snap, offset)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, cerrors.New(cerrors.InternalError, "symbol lookup failed", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best, ok := SelectBinding(bindings, offset)
	if !ok {
		return nil, nil
	}
	return &LocatedSymbol{
		Symbol:     best.Symbol,
		Project:    snap.Project(),
		Span:       best.Span,
		Definition: best.Definition,
	}, nil
}

// SelectBinding picks the innermost binding covering offset. Candidates are
// ranked by: strict containment before touching-at-end, smaller width, later
// start, definition before reference, then lexically smaller symbol. The
// result depends only on the set of bindings, never on their order.
func SelectBinding(bindings []Binding, offset int) (Binding, bool) {
	var best Binding
	found := false
	for _, b := range bindings {
		if b.Symbol == "" || b.Span.End < b.Span.Start || !b.Span.Touches(offset) {
			continue
		}
		if !found || betterBinding(b, best, offset) {
			best = b
			found = true
		}
	}
	return best, found
}

func betterBinding(a, b Binding, offset int) bool {
	ac, bc := a.Span.Contains(offset), b.Span.Contains(offset)
	if ac != bc {
		return ac
	}
	if a.Span.Width() != b.Span.Width() {
		return a.Span.Width() < b.Span.Width()
	}
	if a.Span.Start != b.Span.Start {
		return a.Span.Start > b.Span.Start
	}
	if a.Definition != b.Definition {
		return a.Definition
	}
	return strings.Compare(string(a.Symbol), string(b.Symbol)) < 0
}
