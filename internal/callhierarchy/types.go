// Package callhierarchy resolves the symbol under a caret into a single call
// hierarchy root node and hands it to a presenter.
//
// The pipeline runs four stages in strict sequence under one context:
// locate, normalize, build, dispatch. Each stage reports its failure modes as
// explicit results; only cancellation and collaborator errors travel as Go
// errors.
package callhierarchy

import "fmt"

// SymbolID is an opaque, stable symbol identifier (a SCIP symbol string in practice)
type SymbolID string

// ProjectID identifies the project context a symbol is bound in
type ProjectID string

// SnapshotID identifies a point-in-time semantic view of a document
type SnapshotID string

// DocumentRef names the document the caret is in. Content, when non-nil, is
// the editor's current text and takes precedence over the file on disk.
type DocumentRef struct {
	Path    string
	Content []byte
}

// Span is a byte range [Start, End) within a document
type Span struct {
	Start int
	End   int
}

// Width returns the length of the span
func (s Span) Width() int {
	return s.End - s.Start
}

// Contains reports whether offset lies strictly inside the span
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

// Touches reports whether offset lies inside the span or right at its end
func (s Span) Touches(offset int) bool {
	return s.Start <= offset && offset <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Binding is one symbol occurrence the semantic provider reports near an offset
type Binding struct {
	Symbol     SymbolID
	Span       Span
	Definition bool
}

// LocatedSymbol is the symbol bound at the caret
type LocatedSymbol struct {
	Symbol     SymbolID
	Project    ProjectID
	Span       Span
	Definition bool
}

// Mapping is what a SymbolMappingService returns for a symbol.
// Found is false when no authoritative target exists.
type Mapping struct {
	Symbol  SymbolID
	Project ProjectID
	Found   bool
}

// NormalizationKind classifies a normalization result
type NormalizationKind int

const (
	// Unchanged means the symbol is already canonical
	Unchanged NormalizationKind = iota
	// Redirected means the symbol was replaced by its source-backed counterpart
	Redirected
	// Unresolvable means no canonical symbol exists
	Unresolvable
)

func (k NormalizationKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Redirected:
		return "redirected"
	case Unresolvable:
		return "unresolvable"
	default:
		return fmt.Sprintf("NormalizationKind(%d)", int(k))
	}
}

// NormalizationResult carries the canonical identity for Unchanged and
// Redirected results. Symbol and Project are empty for Unresolvable.
type NormalizationResult struct {
	Kind    NormalizationKind
	Symbol  SymbolID
	Project ProjectID
}

// Severity tags notifier messages
type Severity int

const (
	SeverityInformation Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInformation:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Location is a zero-based line/column range in a project-relative file
type Location struct {
	Path        string `json:"path" yaml:"path"`
	StartLine   int    `json:"startLine" yaml:"startLine"`
	StartColumn int    `json:"startColumn" yaml:"startColumn"`
	EndLine     int    `json:"endLine" yaml:"endLine"`
	EndColumn   int    `json:"endColumn" yaml:"endColumn"`
}

// Direction selects which call edges to expand
type Direction string

const (
	DirectionCallers Direction = "callers"
	DirectionCallees Direction = "callees"
)

// ParseDirection converts a flag value to a Direction
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionCallers, DirectionCallees:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q (want callers or callees)", s)
	}
}
