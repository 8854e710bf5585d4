//go:build !cgo

package syntax

import "context"

// IsAvailable returns whether tree-sitter extraction is compiled in
func IsAvailable() bool {
	return false
}

// Declarations always fails without cgo
func Declarations(ctx context.Context, source []byte, lang Language) ([]Declaration, error) {
	return nil, ErrNoCGO
}
