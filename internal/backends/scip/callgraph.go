package scip

import (
	"context"
	"sort"
)

// DefaultMaxFunctionLines bounds the last function in a document when
// neither the index nor a BodyResolver knows where it ends.
const DefaultMaxFunctionLines = 500

// LineRange is an inclusive zero-based line range
type LineRange struct {
	Start int
	End   int
}

func (r LineRange) contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// BodyResolver supplies declaration line ranges for a document. It is
// consulted when the index does not carry enclosing ranges.
type BodyResolver interface {
	BodyRanges(ctx context.Context, doc *Document) []LineRange
}

// CallGraphNode is one caller or callee of a symbol
type CallGraphNode struct {
	SymbolID string
	Name     string
	Kind     SymbolKind
	Location *Location
	// CallSites are the reference locations inside the caller
	CallSites []Location
}

// FindCallees returns the callables referenced from the body of symbolId,
// in order of first reference.
func (idx *Index) FindCallees(ctx context.Context, symbolId string, bodies BodyResolver) ([]*CallGraphNode, error) {
	site, ok := idx.definitions[symbolId]
	if !ok {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	funcRanges := idx.functionRanges(ctx, site.doc, bodies)
	body, found := funcRanges[symbolId]
	if !found {
		r, _ := ParseRange(site.occ.Range)
		body = LineRange{Start: r.StartLine, End: r.StartLine + DefaultMaxFunctionLines}
	}

	var callees []*CallGraphNode
	byID := make(map[string]*CallGraphNode)
	for _, occ := range site.doc.Occurrences {
		if occ.Symbol == symbolId || occ.IsDefinition() || !idx.isFunctionSymbol(occ.Symbol) {
			continue
		}
		r, ok := ParseRange(occ.Range)
		if !ok || !body.contains(r.StartLine) {
			continue
		}

		node := byID[occ.Symbol]
		if node == nil {
			node = idx.newCallGraphNode(occ.Symbol)
			byID[occ.Symbol] = node
			callees = append(callees, node)
		}
		node.CallSites = append(node.CallSites, *parseOccurrenceRange(occ, site.doc.RelativePath))
	}

	return callees, nil
}

// FindCallers returns the callables whose bodies reference symbolId, sorted
// by symbol ID.
func (idx *Index) FindCallers(ctx context.Context, symbolId string, bodies BodyResolver) ([]*CallGraphNode, error) {
	byID := make(map[string]*CallGraphNode)

	for _, doc := range idx.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var refs []*Occurrence
		for _, occ := range doc.Occurrences {
			if occ.Symbol == symbolId && !occ.IsDefinition() {
				refs = append(refs, occ)
			}
		}
		if len(refs) == 0 {
			continue
		}

		funcRanges := idx.functionRanges(ctx, doc, bodies)
		for _, occ := range refs {
			r, ok := ParseRange(occ.Range)
			if !ok {
				continue
			}
			caller, ok := innermostRange(funcRanges, r.StartLine)
			if !ok {
				continue
			}
			node := byID[caller]
			if node == nil {
				node = idx.newCallGraphNode(caller)
				byID[caller] = node
			}
			node.CallSites = append(node.CallSites, *parseOccurrenceRange(occ, doc.RelativePath))
		}
	}

	callers := make([]*CallGraphNode, 0, len(byID))
	for _, node := range byID {
		callers = append(callers, node)
	}
	sort.Slice(callers, func(i, j int) bool { return callers[i].SymbolID < callers[j].SymbolID })
	return callers, nil
}

func (idx *Index) newCallGraphNode(symbolId string) *CallGraphNode {
	loc, _ := idx.Definition(symbolId)
	return &CallGraphNode{
		SymbolID: symbolId,
		Name:     DisplayLabel(symbolId),
		Kind:     idx.SymbolKind(symbolId),
		Location: loc,
	}
}

// isFunctionSymbol reports whether symbolId names something with a body
func (idx *Index) isFunctionSymbol(symbolId string) bool {
	if IsLocalSymbol(symbolId) {
		return false
	}
	switch idx.SymbolKind(symbolId) {
	case KindFunction, KindMethod, KindConstructor:
		return true
	}
	return false
}

// functionRanges maps each function defined in doc to its body lines. The
// indexer's enclosing range is preferred, then the resolver's declaration
// ranges, then the span up to the next function definition.
func (idx *Index) functionRanges(ctx context.Context, doc *Document, bodies BodyResolver) map[string]LineRange {
	type funcDef struct {
		symbol    string
		startLine int
		enclosing *Range
	}
	var funcs []funcDef
	seen := make(map[string]bool)
	for _, occ := range doc.Occurrences {
		if !occ.IsDefinition() || seen[occ.Symbol] || !idx.isFunctionSymbol(occ.Symbol) {
			continue
		}
		r, ok := ParseRange(occ.Range)
		if !ok {
			continue
		}
		seen[occ.Symbol] = true
		def := funcDef{symbol: occ.Symbol, startLine: r.StartLine}
		if enc, ok := ParseRange(occ.EnclosingRange); ok {
			def.enclosing = &enc
		}
		funcs = append(funcs, def)
	}
	sort.SliceStable(funcs, func(i, j int) bool { return funcs[i].startLine < funcs[j].startLine })

	var declared []LineRange
	if bodies != nil {
		needHint := false
		for _, f := range funcs {
			if f.enclosing == nil {
				needHint = true
				break
			}
		}
		if needHint {
			declared = bodies.BodyRanges(ctx, doc)
		}
	}

	ranges := make(map[string]LineRange, len(funcs))
	for i, f := range funcs {
		if f.enclosing != nil {
			ranges[f.symbol] = LineRange{Start: f.enclosing.StartLine, End: f.enclosing.EndLine}
			continue
		}
		if decl, ok := smallestContaining(declared, f.startLine); ok {
			ranges[f.symbol] = decl
			continue
		}
		end := f.startLine + DefaultMaxFunctionLines
		if i+1 < len(funcs) {
			end = funcs[i+1].startLine - 1
		}
		ranges[f.symbol] = LineRange{Start: f.startLine, End: end}
	}
	return ranges
}

func smallestContaining(ranges []LineRange, line int) (LineRange, bool) {
	var best LineRange
	found := false
	for _, r := range ranges {
		if !r.contains(line) {
			continue
		}
		if !found || r.End-r.Start < best.End-best.Start {
			best = r
			found = true
		}
	}
	return best, found
}

// innermostRange picks the function with the tightest range around line,
// breaking ties by symbol ID.
func innermostRange(ranges map[string]LineRange, line int) (string, bool) {
	var bestID string
	var best LineRange
	for id, r := range ranges {
		if !r.contains(line) {
			continue
		}
		width, bestWidth := r.End-r.Start, best.End-best.Start
		if bestID == "" || width < bestWidth || (width == bestWidth && id < bestID) {
			bestID, best = id, r
		}
	}
	return bestID, bestID != ""
}
