package semantic

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"callroot/internal/backends/scip"
	"callroot/internal/paths"
	"callroot/internal/syntax"
)

// syntaxBodies recovers function line ranges with tree-sitter for indexes
// that carry no enclosing ranges. Results are cached per file.
type syntaxBodies struct {
	root   string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string][]scip.LineRange
}

func newSyntaxBodies(root string, logger *slog.Logger) *syntaxBodies {
	return &syntaxBodies{
		root:   root,
		logger: logger,
		cache:  make(map[string][]scip.LineRange),
	}
}

// BodyRanges implements scip.BodyResolver
func (b *syntaxBodies) BodyRanges(ctx context.Context, doc *scip.Document) []scip.LineRange {
	if !syntax.IsAvailable() {
		return nil
	}

	b.mu.Lock()
	cached, ok := b.cache[doc.RelativePath]
	b.mu.Unlock()
	if ok {
		return cached
	}

	ranges := b.parse(ctx, doc)

	b.mu.Lock()
	b.cache[doc.RelativePath] = ranges
	b.mu.Unlock()
	return ranges
}

func (b *syntaxBodies) parse(ctx context.Context, doc *scip.Document) []scip.LineRange {
	lang, ok := syntax.DetectLanguage(doc.Language, doc.RelativePath)
	if !ok {
		return nil
	}
	source, err := os.ReadFile(paths.JoinRootPath(b.root, doc.RelativePath))
	if err != nil {
		b.logger.Debug("Cannot read source for body ranges", "path", doc.RelativePath, "error", err.Error())
		return nil
	}
	decls, err := syntax.Declarations(ctx, source, lang)
	if err != nil {
		b.logger.Debug("Declaration extraction failed", "path", doc.RelativePath, "error", err.Error())
		return nil
	}

	var ranges []scip.LineRange
	for _, d := range decls {
		if d.IsCallable() {
			ranges = append(ranges, scip.LineRange{Start: d.StartLine, End: d.EndLine})
		}
	}
	return ranges
}
