// Package syntax extracts declaration ranges from source text with
// tree-sitter. Builds without cgo get a stub that returns ErrNoCGO.
package syntax

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoCGO is returned when tree-sitter is unavailable
var ErrNoCGO = errors.New("syntax extraction requires CGO (tree-sitter)")

// Language is a supported source language
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
)

// Declaration is one function, method or type declaration
type Declaration struct {
	Name string
	// Kind is "function", "method", "class", "interface" or "type"
	Kind string
	// Container is the enclosing type for methods
	Container string
	// StartLine and EndLine are zero-based and inclusive
	StartLine int
	EndLine   int
}

// IsCallable reports whether the declaration has a body that can make calls
func (d Declaration) IsCallable() bool {
	return d.Kind == "function" || d.Kind == "method"
}

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return LangGo, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".py", ".pyw":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".java":
		return LangJava, true
	case ".kt", ".kts":
		return LangKotlin, true
	default:
		return "", false
	}
}

// DetectLanguage picks a language from an index language name, falling back
// to the file extension.
func DetectLanguage(name, path string) (Language, bool) {
	switch strings.ToLower(name) {
	case "go":
		return LangGo, true
	case "javascript", "javascriptreact":
		return LangJavaScript, true
	case "typescript":
		if strings.EqualFold(filepath.Ext(path), ".tsx") {
			return LangTSX, true
		}
		return LangTypeScript, true
	case "typescriptreact", "tsx":
		return LangTSX, true
	case "python":
		return LangPython, true
	case "rust":
		return LangRust, true
	case "java":
		return LangJava, true
	case "kotlin":
		return LangKotlin, true
	}
	return LanguageFromExtension(filepath.Ext(path))
}
