package callhierarchy

import (
	"context"
	"log/slog"

	cerrors "callroot/internal/errors"
	"callroot/internal/slogutil"
)

// Builder constructs the root node for a canonical symbol
type Builder struct {
	factory ItemFactory
	logger  *slog.Logger
}

// NewBuilder creates a builder over factory
func NewBuilder(factory ItemFactory, logger *slog.Logger) *Builder {
	return &Builder{factory: factory, logger: slogutil.OrDiscard(logger)}
}

// Build returns the root node for (symbol, project), or nil when the factory
// declines. The node carries no known calls; edges are computed on Expand.
func (b *Builder) Build(ctx context.Context, symbol SymbolID, project ProjectID) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node, err := b.factory.CreateItem(ctx, symbol, project)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, cerrors.New(cerrors.InternalError, "item construction failed", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if node == nil {
		b.logger.Warn("No call hierarchy item for resolved symbol",
			"symbol", string(symbol),
			"project", string(project),
		)
		return nil, nil
	}
	if node.Symbol() != symbol || node.Project() != project {
		b.logger.Warn("Item factory returned a different symbol",
			"want_symbol", string(symbol),
			"want_project", string(project),
			"got_symbol", string(node.Symbol()),
			"got_project", string(node.Project()),
		)
		return nil, nil
	}
	if len(node.spec.KnownCalls) > 0 {
		node = NewNode(NodeSpec{
			Symbol:   node.spec.Symbol,
			Project:  node.spec.Project,
			Label:    node.spec.Label,
			Kind:     node.spec.Kind,
			Detail:   node.spec.Detail,
			Location: node.spec.Location,
		}, node.expander)
	}
	return node, nil
}
