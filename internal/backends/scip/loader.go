package scip

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"callroot/internal/errors"
)

// zstdMagic prefixes every zstd frame
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Index is a loaded SCIP index. It is read-only after construction and safe
// for concurrent use.
type Index struct {
	Metadata  *Metadata
	Documents []*Document
	// Symbols maps symbol IDs to symbol information
	Symbols map[string]*SymbolInformation
	// Path is the file the index was loaded from; empty for in-memory indexes
	Path     string
	LoadedAt time.Time

	byPath      map[string]*Document
	definitions map[string]definitionSite
	versionless map[string]string
}

type definitionSite struct {
	doc *Document
	occ *Occurrence
}

// LoadIndex loads a SCIP index from path. Zstandard-compressed indexes are
// detected from their frame header.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.IndexMissing, fmt.Sprintf("SCIP index not found at %s", path), err)
		}
		return nil, errors.New(errors.InternalError, fmt.Sprintf("failed to read SCIP index from %s", path), err)
	}

	idx, err := DecodeIndex(data)
	if err != nil {
		return nil, errors.New(errors.IndexCorrupt, fmt.Sprintf("failed to parse SCIP index from %s", path), err).
			WithDetails(map[string]string{"index_path": path})
	}
	idx.Path = path
	return idx, nil
}

// DecodeIndex parses a serialized SCIP index, decompressing it first when it
// is zstd-framed.
func DecodeIndex(data []byte) (*Index, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
	}

	var raw scippb.Index
	if err := proto.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return NewIndex(convertMetadata(raw.Metadata), convertDocuments(raw.Documents)), nil
}

// NewIndex builds an index from already converted documents
func NewIndex(meta *Metadata, docs []*Document) *Index {
	idx := &Index{
		Metadata:    meta,
		Documents:   docs,
		Symbols:     make(map[string]*SymbolInformation),
		LoadedAt:    time.Now(),
		byPath:      make(map[string]*Document, len(docs)),
		definitions: make(map[string]definitionSite),
		versionless: make(map[string]string),
	}

	for _, doc := range docs {
		idx.byPath[doc.RelativePath] = doc
		for _, sym := range doc.Symbols {
			idx.Symbols[sym.Symbol] = sym
		}
		for _, occ := range doc.Occurrences {
			if !occ.IsDefinition() || IsLocalSymbol(occ.Symbol) {
				continue
			}
			if _, seen := idx.definitions[occ.Symbol]; !seen {
				idx.definitions[occ.Symbol] = definitionSite{doc: doc, occ: occ}
			}
		}
	}

	// Several versions of a symbol may be defined; the lexically smallest
	// wins so lookups stay deterministic.
	ids := make([]string, 0, len(idx.definitions))
	for id := range idx.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		key := VersionlessKey(id)
		if _, taken := idx.versionless[key]; !taken {
			idx.versionless[key] = id
		}
	}

	return idx
}

// Document returns the document at a project-relative path, or nil
func (i *Index) Document(relativePath string) *Document {
	return i.byPath[relativePath]
}

// Symbol returns symbol information by ID, or nil
func (i *Index) Symbol(symbolId string) *SymbolInformation {
	return i.Symbols[symbolId]
}

// convertMetadata converts protobuf metadata to internal representation
func convertMetadata(meta *scippb.Metadata) *Metadata {
	if meta == nil {
		return nil
	}
	out := &Metadata{
		Version:     fmt.Sprintf("%d", meta.Version),
		ProjectRoot: meta.ProjectRoot,
	}
	if meta.ToolInfo != nil {
		out.ToolName = meta.ToolInfo.Name
		out.ToolVersion = meta.ToolInfo.Version
	}
	return out
}

// convertDocuments converts protobuf documents to internal representation
func convertDocuments(docs []*scippb.Document) []*Document {
	result := make([]*Document, len(docs))
	for i, doc := range docs {
		result[i] = convertDocument(doc)
	}
	return result
}

func convertDocument(doc *scippb.Document) *Document {
	occurrences := make([]*Occurrence, len(doc.Occurrences))
	for i, occ := range doc.Occurrences {
		occurrences[i] = &Occurrence{
			Range:          occ.Range,
			Symbol:         occ.Symbol,
			SymbolRoles:    occ.SymbolRoles,
			EnclosingRange: occ.EnclosingRange,
		}
	}

	symbols := make([]*SymbolInformation, len(doc.Symbols))
	for i, sym := range doc.Symbols {
		symbols[i] = &SymbolInformation{
			Symbol:          sym.Symbol,
			Documentation:   sym.Documentation,
			Kind:            int32(sym.Kind),
			DisplayName:     sym.DisplayName,
			EnclosingSymbol: sym.EnclosingSymbol,
		}
	}

	return &Document{
		RelativePath:     doc.RelativePath,
		Language:         doc.Language,
		PositionEncoding: convertPositionEncoding(doc.PositionEncoding),
		Occurrences:      occurrences,
		Symbols:          symbols,
	}
}

func convertPositionEncoding(enc scippb.PositionEncoding) string {
	switch enc {
	case scippb.PositionEncoding_UTF8CodeUnitOffsetFromLineStart:
		return EncodingUTF8
	case scippb.PositionEncoding_UTF16CodeUnitOffsetFromLineStart:
		return EncodingUTF16
	case scippb.PositionEncoding_UTF32CodeUnitOffsetFromLineStart:
		return EncodingUTF32
	default:
		return ""
	}
}
