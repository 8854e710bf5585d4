package scip

import (
	"fmt"
	"strings"
)

// SCIPIdentifier is a parsed SCIP symbol string.
//
// Global symbols have the form:
//
//	<scheme> <manager> <package-name> <version> <descriptors>
//
// Examples:
//
//	scip-go gomod callroot a6af7cf `callroot/internal/config`/LoadConfig().
//	scip-java maven com.google.guava guava 31.0 ImmutableList#of().
//	local 12
type SCIPIdentifier struct {
	Scheme     string
	Manager    string
	Package    string
	Version    string
	Descriptor string
	// Local symbols are file-scoped and have no package
	Local bool
	Raw   string
}

// IsLocalSymbol reports whether id is a document-local symbol
func IsLocalSymbol(id string) bool {
	return strings.HasPrefix(id, "local ")
}

// ParseSCIPIdentifier parses a SCIP symbol string
func ParseSCIPIdentifier(id string) (*SCIPIdentifier, error) {
	if id == "" {
		return nil, fmt.Errorf("empty SCIP identifier")
	}
	if IsLocalSymbol(id) {
		return &SCIPIdentifier{Scheme: "local", Descriptor: strings.TrimPrefix(id, "local "), Local: true, Raw: id}, nil
	}

	// The descriptor may itself contain spaces inside backticks, so only the
	// first four separators are structural.
	parts := strings.SplitN(id, " ", 5)
	if len(parts) < 5 {
		return nil, fmt.Errorf("invalid SCIP identifier format: %s", id)
	}

	return &SCIPIdentifier{
		Scheme:     parts[0],
		Manager:    parts[1],
		Package:    parts[2],
		Version:    parts[3],
		Descriptor: parts[4],
		Raw:        id,
	}, nil
}

// GetLanguage extracts the language from the scheme ("scip-go" -> "go")
func (s *SCIPIdentifier) GetLanguage() string {
	return strings.TrimPrefix(s.Scheme, "scip-")
}

// Descriptors splits the descriptor chain
func (s *SCIPIdentifier) Descriptors() []Descriptor {
	return parseDescriptors(s.Descriptor)
}

// GetSimpleName returns the name of the innermost descriptor
func (s *SCIPIdentifier) GetSimpleName() string {
	descs := s.Descriptors()
	if len(descs) == 0 {
		return s.Descriptor
	}
	return descs[len(descs)-1].Name
}

// GetContainerName returns the name of the nearest enclosing type, or the
// last namespace segment when the symbol is not nested in a type.
func (s *SCIPIdentifier) GetContainerName() string {
	descs := s.Descriptors()
	if len(descs) < 2 {
		return ""
	}
	parent := descs[len(descs)-2]
	if parent.Suffix == SuffixNamespace {
		if idx := strings.LastIndex(parent.Name, "/"); idx >= 0 {
			return parent.Name[idx+1:]
		}
	}
	return parent.Name
}

// DescriptorKind infers a kind from the innermost descriptor suffix
func (s *SCIPIdentifier) DescriptorKind() SymbolKind {
	if s.Local {
		return KindVariable
	}
	descs := s.Descriptors()
	if len(descs) == 0 {
		return KindUnknown
	}
	last := descs[len(descs)-1]
	switch last.Suffix {
	case SuffixMethod:
		if len(descs) > 1 && descs[len(descs)-2].Suffix == SuffixType {
			return KindMethod
		}
		return KindFunction
	case SuffixType:
		return KindType
	case SuffixTerm:
		if len(descs) > 1 && descs[len(descs)-2].Suffix == SuffixType {
			return KindField
		}
		return KindVariable
	case SuffixNamespace:
		return KindNamespace
	case SuffixParameter:
		return KindParameter
	case SuffixTypeParameter:
		return KindType
	case SuffixMacro:
		return KindFunction
	default:
		return KindUnknown
	}
}

// DisplayLabel renders a symbol the way a call hierarchy shows it:
// "Container.Name()" for callables, "Container.Name" otherwise.
func DisplayLabel(id string) string {
	parsed, err := ParseSCIPIdentifier(id)
	if err != nil {
		return id
	}
	name := parsed.GetSimpleName()
	descs := parsed.Descriptors()
	if len(descs) > 0 && descs[len(descs)-1].Suffix == SuffixMethod {
		name += "()"
	}
	if container := parsed.GetContainerName(); container != "" {
		return container + "." + name
	}
	return name
}

// VersionlessKey drops the package version so the same declaration matches
// across builds of a dependency. Local symbols are returned unchanged.
func VersionlessKey(id string) string {
	parsed, err := ParseSCIPIdentifier(id)
	if err != nil || parsed.Local {
		return id
	}
	return strings.Join([]string{parsed.Scheme, parsed.Manager, parsed.Package, parsed.Descriptor}, " ")
}

// DescriptorSuffix classifies one descriptor in a chain
type DescriptorSuffix int

const (
	SuffixNamespace DescriptorSuffix = iota
	SuffixType
	SuffixTerm
	SuffixMethod
	SuffixTypeParameter
	SuffixParameter
	SuffixMeta
	SuffixMacro
)

// Descriptor is one element of a symbol's descriptor chain
type Descriptor struct {
	Name   string
	Suffix DescriptorSuffix
	// Disambiguator is the text inside a method's parentheses
	Disambiguator string
}

// parseDescriptors tokenizes a descriptor chain such as
// "`pkg/path`/Server#Start(+1)." into its elements. Malformed input stops
// parsing and returns what was read so far.
func parseDescriptors(s string) []Descriptor {
	var out []Descriptor
	for len(s) > 0 {
		switch s[0] {
		case '(':
			end := strings.IndexByte(s, ')')
			if end < 0 {
				return out
			}
			out = append(out, Descriptor{Name: s[1:end], Suffix: SuffixParameter})
			s = s[end+1:]
			continue
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return out
			}
			out = append(out, Descriptor{Name: s[1:end], Suffix: SuffixTypeParameter})
			s = s[end+1:]
			continue
		}

		name, rest, ok := readName(s)
		if !ok || rest == "" {
			return out
		}
		switch rest[0] {
		case '/':
			out = append(out, Descriptor{Name: name, Suffix: SuffixNamespace})
			s = rest[1:]
		case '#':
			out = append(out, Descriptor{Name: name, Suffix: SuffixType})
			s = rest[1:]
		case '.':
			out = append(out, Descriptor{Name: name, Suffix: SuffixTerm})
			s = rest[1:]
		case ':':
			out = append(out, Descriptor{Name: name, Suffix: SuffixMeta})
			s = rest[1:]
		case '!':
			out = append(out, Descriptor{Name: name, Suffix: SuffixMacro})
			s = rest[1:]
		case '(':
			end := strings.IndexByte(rest, ')')
			if end < 0 || end+1 >= len(rest) || rest[end+1] != '.' {
				return out
			}
			out = append(out, Descriptor{Name: name, Suffix: SuffixMethod, Disambiguator: rest[1:end]})
			s = rest[end+2:]
		default:
			return out
		}
	}
	return out
}

// readName reads a simple or backtick-escaped name. Doubled backticks inside
// an escaped name stand for one backtick.
func readName(s string) (name, rest string, ok bool) {
	if s == "" {
		return "", "", false
	}
	if s[0] != '`' {
		i := 0
		for i < len(s) && isIdentChar(s[i]) {
			i++
		}
		if i == 0 {
			return "", "", false
		}
		return s[:i], s[i:], true
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '`' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '`' {
			b.WriteByte('`')
			i++
			continue
		}
		return b.String(), s[i+1:], true
	}
	return "", "", false
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '+' || c == '-' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
