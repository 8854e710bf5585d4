//go:build cgo

package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// IsAvailable returns whether tree-sitter extraction is compiled in
func IsAvailable() bool {
	return true
}

// Declarations parses source and returns its function, method and type
// declarations in source order.
func Declarations(ctx context.Context, source []byte, lang Language) ([]Declaration, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	// sitter.Parser is not safe for concurrent use; parsers are cheap.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	w := &walker{
		source:    source,
		lang:      lang,
		functions: toSet(functionNodeTypes(lang)),
		classes:   toSet(classNodeTypes(lang)),
	}
	w.walk(tree.RootNode(), "")
	return w.decls, nil
}

type walker struct {
	source    []byte
	lang      Language
	functions map[string]bool
	classes   map[string]bool
	decls     []Declaration
}

func (w *walker) walk(node *sitter.Node, container string) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	switch {
	case w.classes[nodeType]:
		if name := w.className(node); name != "" {
			w.decls = append(w.decls, w.declaration(node, name, classKind(nodeType), ""))
			container = name
		}
	case w.functions[nodeType]:
		name := w.functionName(node)
		if name == "" {
			break
		}
		owner := container
		if w.lang == LangGo && nodeType == "method_declaration" {
			owner = w.text(firstDescendantOfType(node.ChildByFieldName("receiver"), "type_identifier"))
		}
		kind := "function"
		if owner != "" {
			kind = "method"
		}
		w.decls = append(w.decls, w.declaration(node, name, kind, owner))
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.walk(node.NamedChild(i), container)
	}
}

func (w *walker) declaration(node *sitter.Node, name, kind, container string) Declaration {
	return Declaration{
		Name:      name,
		Kind:      kind,
		Container: container,
		StartLine: int(node.StartPoint().Row),
		EndLine:   int(node.EndPoint().Row),
	}
}

func (w *walker) functionName(node *sitter.Node) string {
	if w.lang == LangKotlin {
		return w.text(firstChildOfType(node, "simple_identifier"))
	}
	return w.text(node.ChildByFieldName("name"))
}

func (w *walker) className(node *sitter.Node) string {
	switch w.lang {
	case LangGo:
		spec := firstChildOfType(node, "type_spec")
		if spec == nil {
			return ""
		}
		return w.text(spec.ChildByFieldName("name"))
	case LangRust:
		if node.Type() == "impl_item" {
			return w.text(node.ChildByFieldName("type"))
		}
	case LangKotlin:
		if name := w.text(node.ChildByFieldName("name")); name != "" {
			return name
		}
		return w.text(firstChildOfType(node, "type_identifier"))
	}
	return w.text(node.ChildByFieldName("name"))
}

func (w *walker) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(w.source)
}

func firstChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func firstDescendantOfType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == nodeType {
		return node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := firstDescendantOfType(node.NamedChild(i), nodeType); found != nil {
			return found
		}
	}
	return nil
}

func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// functionNodeTypes lists named callable declarations; lambdas are part of
// the body that contains them.
func functionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"function_declaration", "generator_function_declaration", "method_definition"}
	case LangPython:
		return []string{"function_definition"}
	case LangRust:
		return []string{"function_item"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangKotlin:
		return []string{"function_declaration"}
	default:
		return nil
	}
}

func classNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"type_declaration"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"class_declaration", "interface_declaration"}
	case LangPython:
		return []string{"class_definition"}
	case LangRust:
		return []string{"struct_item", "enum_item", "trait_item", "impl_item"}
	case LangJava:
		return []string{"class_declaration", "interface_declaration", "enum_declaration"}
	case LangKotlin:
		return []string{"class_declaration", "object_declaration"}
	default:
		return nil
	}
}

func classKind(nodeType string) string {
	switch nodeType {
	case "interface_declaration", "trait_item":
		return "interface"
	case "class_declaration", "class_definition", "object_declaration":
		return "class"
	}
	return "type"
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
