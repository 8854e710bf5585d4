package semantic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"callroot/internal/backends/scip"
	"callroot/internal/workspace"
)

const mainSource = `package main

func helper() int {
	return 1
}

func run() {
	helper()
	helper()
}

func main() {
	run()
	lib.Greet()
}
`

const greetSource = `package lib

func Greet() {}
`

const (
	symHelper  = "scip-go gomod example.com/app v1 `example.com/app`/helper()."
	symRun     = "scip-go gomod example.com/app v1 `example.com/app`/run()."
	symMain    = "scip-go gomod example.com/app v1 `example.com/app`/main()."
	symServer  = "scip-go gomod example.com/app v1 `example.com/app`/Server#"
	symGreet   = "scip-go gomod example.com/lib v1.2.0 `example.com/lib`/Greet()."
	symGreetV1 = "scip-go gomod example.com/lib v1.1.0 `example.com/lib`/Greet()."
)

func def(symbol string, rng ...int32) *scip.Occurrence {
	return &scip.Occurrence{Symbol: symbol, Range: rng, SymbolRoles: scip.SymbolRoleDefinition}
}

func ref(symbol string, rng ...int32) *scip.Occurrence {
	return &scip.Occurrence{Symbol: symbol, Range: rng, SymbolRoles: scip.SymbolRoleReadAccess}
}

// fixture lays out a workspace on disk:
//
//	app/main.go      source project "app"
//	lib/greet.go     source project "lib", defines Greet v1.2.0
//	deps/greet.go    metadata project "deps", a view of Greet v1.1.0
type fixture struct {
	root string
	ws   *workspace.Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("app/main.go", mainSource)
	write("lib/greet.go", greetSource)
	write("deps/greet.go", greetSource)

	m := workspace.NewManifest("fixture")
	for _, p := range []struct {
		name string
		kind workspace.ProjectKind
	}{
		{"app", workspace.KindSource},
		{"lib", workspace.KindSource},
		{"deps", workspace.KindMetadata},
	} {
		if _, err := m.AddProject(p.name, p.name, "", p.kind, "go"); err != nil {
			t.Fatal(err)
		}
	}
	ws, err := workspace.New(root, m, workspace.Options{DefaultIndexPath: "index.scip"})
	if err != nil {
		t.Fatal(err)
	}

	ws.SetIndex("app", scip.NewIndex(nil, []*scip.Document{{
		RelativePath:     "main.go",
		Language:         "go",
		PositionEncoding: scip.EncodingUTF8,
		Occurrences: []*scip.Occurrence{
			def(symHelper, 2, 5, 11),
			def(symRun, 6, 5, 8),
			ref(symHelper, 7, 1, 7),
			ref(symHelper, 8, 1, 7),
			def(symMain, 11, 5, 9),
			ref(symRun, 12, 1, 4),
			ref(symGreet, 13, 5, 10),
			def(symServer, 20, 5, 11),
			def("local 1", 3, 1, 7),
		},
	}}))
	ws.SetIndex("lib", scip.NewIndex(nil, []*scip.Document{{
		RelativePath: "greet.go",
		Language:     "go",
		Occurrences:  []*scip.Occurrence{def(symGreet, 2, 5, 10)},
	}}))
	ws.SetIndex("deps", scip.NewIndex(nil, []*scip.Document{{
		RelativePath: "greet.go",
		Language:     "go",
		Occurrences:  []*scip.Occurrence{def(symGreetV1, 2, 5, 10)},
	}}))

	return &fixture{root: root, ws: ws}
}

// at returns the byte offset of (line, col) in src
func at(src string, line, col int) int {
	lines := strings.SplitAfter(src, "\n")
	off := 0
	for i := 0; i < line; i++ {
		off += len(lines[i])
	}
	return off + col
}
