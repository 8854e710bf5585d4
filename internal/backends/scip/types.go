package scip

// SymbolKind represents the kind of a symbol
type SymbolKind string

const (
	KindClass       SymbolKind = "class"
	KindInterface   SymbolKind = "interface"
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindConstructor SymbolKind = "constructor"
	KindProperty    SymbolKind = "property"
	KindEvent       SymbolKind = "event"
	KindField       SymbolKind = "field"
	KindVariable    SymbolKind = "variable"
	KindConstant    SymbolKind = "constant"
	KindType        SymbolKind = "type"
	KindPackage     SymbolKind = "package"
	KindParameter   SymbolKind = "parameter"
	KindNamespace   SymbolKind = "namespace"
	KindEnum        SymbolKind = "enum"
	KindUnknown     SymbolKind = "unknown"
)

// IsMember reports whether symbols of this kind can head a call hierarchy.
// Types, namespaces, locals and parameters cannot.
func (k SymbolKind) IsMember() bool {
	switch k {
	case KindFunction, KindMethod, KindConstructor, KindProperty, KindEvent, KindField:
		return true
	}
	return false
}

// Position encodings a document's character offsets may use
const (
	EncodingUTF8  = "utf-8"
	EncodingUTF16 = "utf-16"
	EncodingUTF32 = "utf-32"
)

// Location is a zero-based range in a project-relative file
type Location struct {
	Path        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Metadata is the index header
type Metadata struct {
	Version     string
	ToolName    string
	ToolVersion string
	// ProjectRoot is a URI, usually file://
	ProjectRoot string
}

// Document is one source file in the index
type Document struct {
	RelativePath string
	Language     string
	// PositionEncoding is one of the Encoding constants; empty means unspecified
	PositionEncoding string
	Occurrences      []*Occurrence
	Symbols          []*SymbolInformation
}

// Occurrence is one appearance of a symbol in a document
type Occurrence struct {
	// Range is [startLine, startChar, endChar] or [startLine, startChar, endLine, endChar]
	Range       []int32
	Symbol      string
	SymbolRoles int32
	// EnclosingRange, when the indexer emits it, covers the whole declaration
	EnclosingRange []int32
}

// IsDefinition reports whether the occurrence defines its symbol
func (o *Occurrence) IsDefinition() bool {
	return o.SymbolRoles&SymbolRoleDefinition != 0
}

// SymbolInformation holds per-symbol data from the index
type SymbolInformation struct {
	Symbol          string
	Documentation   []string
	Kind            int32
	DisplayName     string
	EnclosingSymbol string
}

// SymbolRole constants (from SCIP protocol)
const (
	SymbolRoleDefinition        int32 = 1
	SymbolRoleImport            int32 = 2
	SymbolRoleWriteAccess       int32 = 4
	SymbolRoleReadAccess        int32 = 8
	SymbolRoleGenerated         int32 = 16
	SymbolRoleTest              int32 = 32
	SymbolRoleForwardDefinition int32 = 64
)
