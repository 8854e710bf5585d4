package scip

import (
	scippb "github.com/sourcegraph/scip/bindings/go/scip"
)

// Defines reports whether the index contains a definition of symbol
func (i *Index) Defines(symbolId string) bool {
	_, ok := i.definitions[symbolId]
	return ok
}

// Definition returns the location of symbol's definition
func (i *Index) Definition(symbolId string) (*Location, bool) {
	site, ok := i.definitions[symbolId]
	if !ok {
		return nil, false
	}
	loc := parseOccurrenceRange(site.occ, site.doc.RelativePath)
	return loc, loc != nil
}

// DefinitionDocument returns the document that defines symbol, or nil
func (i *Index) DefinitionDocument(symbolId string) *Document {
	if site, ok := i.definitions[symbolId]; ok {
		return site.doc
	}
	return nil
}

// FindVersionless returns the symbol defined in this index that matches id
// ignoring package version.
func (i *Index) FindVersionless(symbolId string) (string, bool) {
	found, ok := i.versionless[VersionlessKey(symbolId)]
	return found, ok
}

// Knows reports whether the index has any trace of symbol: a definition,
// symbol information, or an occurrence.
func (i *Index) Knows(symbolId string) bool {
	if i.Defines(symbolId) || i.Symbols[symbolId] != nil {
		return true
	}
	for _, doc := range i.Documents {
		for _, occ := range doc.Occurrences {
			if occ.Symbol == symbolId {
				return true
			}
		}
	}
	return false
}

// SymbolKind returns the kind recorded in the index, falling back to the
// descriptor suffix when the indexer left it unspecified.
func (i *Index) SymbolKind(symbolId string) SymbolKind {
	if info := i.Symbols[symbolId]; info != nil {
		if k := mapSCIPKind(info.Kind); k != KindUnknown {
			return k
		}
	}
	parsed, err := ParseSCIPIdentifier(symbolId)
	if err != nil {
		return KindUnknown
	}
	return parsed.DescriptorKind()
}

// DisplayName returns the indexer's display name, or the descriptor name
func (i *Index) DisplayName(symbolId string) string {
	if info := i.Symbols[symbolId]; info != nil && info.DisplayName != "" {
		return info.DisplayName
	}
	parsed, err := ParseSCIPIdentifier(symbolId)
	if err != nil {
		return symbolId
	}
	return parsed.GetSimpleName()
}

// mapSCIPKind maps SymbolInformation.Kind values to SymbolKind
func mapSCIPKind(kind int32) SymbolKind {
	switch scippb.SymbolInformation_Kind(kind) {
	case scippb.SymbolInformation_Method,
		scippb.SymbolInformation_TraitMethod,
		scippb.SymbolInformation_AbstractMethod,
		scippb.SymbolInformation_StaticMethod,
		scippb.SymbolInformation_Getter,
		scippb.SymbolInformation_Setter:
		return KindMethod
	case scippb.SymbolInformation_Function, scippb.SymbolInformation_Macro:
		return KindFunction
	case scippb.SymbolInformation_Constructor:
		return KindConstructor
	case scippb.SymbolInformation_Field:
		return KindField
	case scippb.SymbolInformation_Property:
		return KindProperty
	case scippb.SymbolInformation_Event:
		return KindEvent
	case scippb.SymbolInformation_Class, scippb.SymbolInformation_Struct:
		return KindClass
	case scippb.SymbolInformation_Interface, scippb.SymbolInformation_Trait:
		return KindInterface
	case scippb.SymbolInformation_Enum:
		return KindEnum
	case scippb.SymbolInformation_EnumMember, scippb.SymbolInformation_Constant:
		return KindConstant
	case scippb.SymbolInformation_Namespace, scippb.SymbolInformation_Module:
		return KindNamespace
	case scippb.SymbolInformation_Package:
		return KindPackage
	case scippb.SymbolInformation_Parameter:
		return KindParameter
	case scippb.SymbolInformation_TypeParameter, scippb.SymbolInformation_Type:
		return KindType
	case scippb.SymbolInformation_Variable:
		return KindVariable
	default:
		return KindUnknown
	}
}

// parseOccurrenceRange converts a SCIP occurrence range to a Location
func parseOccurrenceRange(occ *Occurrence, filePath string) *Location {
	r, ok := ParseRange(occ.Range)
	if !ok {
		return nil
	}
	return &Location{
		Path:        filePath,
		StartLine:   r.StartLine,
		StartColumn: r.StartChar,
		EndLine:     r.EndLine,
		EndColumn:   r.EndChar,
	}
}
