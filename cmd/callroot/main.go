package main

import (
	"fmt"
	"os"

	cerrors "callroot/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printSuggestedFixes(err)
		os.Exit(1)
	}
}

// printSuggestedFixes lists the fixes attached to a CallrootError, if any
func printSuggestedFixes(err error) {
	code := cerrors.CodeOf(err)
	if code == cerrors.InternalError {
		return
	}
	for _, fix := range cerrors.GetSuggestedFixes(code) {
		if fix.Command != "" {
			fmt.Fprintf(os.Stderr, "  hint: %s (%s)\n", fix.Command, fix.Description)
		}
	}
}
