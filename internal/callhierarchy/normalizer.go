package callhierarchy

import (
	"context"
	"log/slog"

	cerrors "callroot/internal/errors"
	"callroot/internal/slogutil"
)

// MaxRedirectDepth bounds how many mapping hops a normalization may follow
const MaxRedirectDepth = 3

type symbolKey struct {
	symbol  SymbolID
	project ProjectID
}

// Normalizer replaces metadata-only symbols with their source-backed
// counterparts. Results are fixpoints: normalizing a returned identity again
// yields Unchanged with the same identity.
type Normalizer struct {
	mapper SymbolMappingService
	logger *slog.Logger
}

// NewNormalizer creates a normalizer over mapper
func NewNormalizer(mapper SymbolMappingService, logger *slog.Logger) *Normalizer {
	return &Normalizer{mapper: mapper, logger: slogutil.OrDiscard(logger)}
}

// Normalize follows the mapping chain from (symbol, project) until it reaches
// an identity that maps to itself. Cycles and chains longer than
// MaxRedirectDepth are Unresolvable.
func (n *Normalizer) Normalize(ctx context.Context, symbol SymbolID, project ProjectID) (NormalizationResult, error) {
	current := symbolKey{symbol: symbol, project: project}
	visited := map[symbolKey]bool{current: true}

	for hops := 0; ; hops++ {
		if err := ctx.Err(); err != nil {
			return NormalizationResult{}, err
		}

		m, err := n.mapper.MapSymbol(ctx, current.symbol, current.project)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return NormalizationResult{}, ctxErr
			}
			return NormalizationResult{}, cerrors.New(cerrors.InternalError, "symbol mapping failed", err)
		}
		if err := ctx.Err(); err != nil {
			return NormalizationResult{}, err
		}

		if !m.Found || m.Symbol == "" {
			n.logger.Debug("No source-backed symbol",
				"symbol", string(current.symbol),
				"project", string(current.project),
				"hops", hops,
			)
			return NormalizationResult{Kind: Unresolvable}, nil
		}

		next := symbolKey{symbol: m.Symbol, project: m.Project}
		if next == current {
			kind := Unchanged
			if hops > 0 {
				kind = Redirected
			}
			return NormalizationResult{Kind: kind, Symbol: current.symbol, Project: current.project}, nil
		}

		if visited[next] {
			n.logger.Warn("Symbol redirect cycle",
				"symbol", string(symbol),
				"project", string(project),
				"at", string(next.symbol),
				"code", cerrors.RedirectCycle,
			)
			return NormalizationResult{Kind: Unresolvable}, nil
		}
		if hops+1 > MaxRedirectDepth {
			n.logger.Warn("Symbol redirect chain too deep",
				"symbol", string(symbol),
				"project", string(project),
				"max_depth", MaxRedirectDepth,
				"code", cerrors.RedirectChainTooDeep,
			)
			return NormalizationResult{Kind: Unresolvable}, nil
		}

		visited[next] = true
		current = next
	}
}
