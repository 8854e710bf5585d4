package present

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"callroot/internal/callhierarchy"
	"callroot/internal/testutil"
)

// graph is a tiny static call graph: edges[symbol] lists callers.
type graph struct {
	edges map[callhierarchy.SymbolID][]callhierarchy.SymbolID
	calls int
	err   error
}

func (g *graph) node(sym callhierarchy.SymbolID, sites ...callhierarchy.Location) *callhierarchy.Node {
	return callhierarchy.NewNode(callhierarchy.NodeSpec{
		Symbol:     sym,
		Project:    "app",
		Label:      string(sym) + "()",
		Kind:       "function",
		Location:   &callhierarchy.Location{Path: "main.go", StartLine: 1, StartColumn: 5},
		KnownCalls: sites,
	}, callhierarchy.ExpanderFunc(g.expand))
}

func (g *graph) expand(ctx context.Context, n *callhierarchy.Node, dir callhierarchy.Direction) ([]callhierarchy.CallEdge, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	var edges []callhierarchy.CallEdge
	for _, caller := range g.edges[n.Symbol()] {
		sites := []callhierarchy.Location{{Path: "main.go", StartLine: 3}, {Path: "main.go", StartLine: 4}}
		edges = append(edges, callhierarchy.CallEdge{Node: g.node(caller, sites...), Sites: sites})
	}
	return edges, nil
}

func newGraph() *graph {
	return &graph{edges: map[callhierarchy.SymbolID][]callhierarchy.SymbolID{
		"helper": {"run", "test"},
		"run":    {"main"},
		"main":   {"run"},
	}}
}

func TestExpand(t *testing.T) {
	g := newGraph()
	tree, err := Expand(context.Background(), g.node("helper"), callhierarchy.DirectionCallers, 3)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(tree.Children) != 2 || tree.Children[0].Symbol != "run" || tree.Children[1].Symbol != "test" {
		t.Fatalf("children = %+v", tree.Children)
	}
	run := tree.Children[0]
	if len(run.CallSites) != 2 {
		t.Errorf("run call sites = %d, want 2", len(run.CallSites))
	}
	main := run.Children[0]
	if main.Symbol != "main" || len(main.Children) != 1 {
		t.Fatalf("main = %+v", main)
	}
	if !main.Children[0].Recursive || main.Children[0].Children != nil {
		t.Errorf("run under main should be marked recursive: %+v", main.Children[0])
	}
}

func TestExpand_DepthLimit(t *testing.T) {
	g := newGraph()
	tree, err := Expand(context.Background(), g.node("helper"), callhierarchy.DirectionCallers, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Children) != 2 || !tree.Children[0].Truncated {
		t.Errorf("depth 1 should truncate children: %+v", tree.Children)
	}

	root, err := Expand(context.Background(), g.node("helper"), callhierarchy.DirectionCallers, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !root.Truncated || root.Children != nil || g.calls != 1 {
		t.Errorf("depth 0 = %+v, expansions = %d", root, g.calls)
	}
}

func TestExpand_Error(t *testing.T) {
	g := newGraph()
	g.err = errors.New("index gone")
	if _, err := Expand(context.Background(), g.node("helper"), callhierarchy.DirectionCallers, 2); err == nil {
		t.Error("Expand() error = nil, want failure")
	}
}

func TestTreePresenter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), &buf, FormatTree, Options{MaxDepth: 2})
	if err != nil {
		t.Fatal(err)
	}
	p.PresentRoot(newGraph().node("helper"))
	if err := p.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	want := strings.Join([]string{
		"helper() [function]  main.go:2:6",
		"callers:",
		"├── run() [function]  main.go:2:6  (2 calls)",
		"│   └── main() [function]  main.go:2:6  (2 calls)  ...",
		"└── test() [function]  main.go:2:6  (2 calls)",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("tree output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestJSONPresenter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), &buf, FormatJSON, Options{Direction: callhierarchy.DirectionCallers, MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	p.PresentRoot(newGraph().node("helper"))

	var got Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Direction != callhierarchy.DirectionCallers || got.Root.Symbol != "helper" || len(got.Root.Children) != 2 {
		t.Errorf("Result = %+v", got)
	}
	if got.Root.Location == nil || got.Root.Location.StartColumn != 5 {
		t.Errorf("root location = %+v", got.Root.Location)
	}
}

func TestJSONPresenter_Golden(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), &buf, FormatJSON, Options{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	p.PresentRoot(newGraph().node("helper"))
	if err := p.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	testutil.CompareGolden(t, filepath.Join("testdata", "helper_callers.json"), buf.Bytes())
}

func TestYAMLPresenter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), &buf, FormatYAML, Options{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	p.PresentRoot(newGraph().node("helper"))

	var got Result
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if got.Root == nil || got.Root.Label != "helper()" || len(got.Root.Children) != 2 {
		t.Errorf("Result = %+v", got)
	}
	if !strings.Contains(buf.String(), "startLine: 1") {
		t.Errorf("yaml keys not camelCase:\n%s", buf.String())
	}
}

func TestPresenterRecordsError(t *testing.T) {
	g := newGraph()
	g.err = errors.New("boom")
	var buf bytes.Buffer
	p, _ := New(context.Background(), &buf, FormatTree, Options{MaxDepth: 1})
	p.PresentRoot(g.node("helper"))
	if p.Err() == nil {
		t.Error("Err() = nil after failed expansion")
	}
	if buf.Len() != 0 {
		t.Errorf("partial output written: %q", buf.String())
	}
}

func TestParseFormatAndConfig(t *testing.T) {
	for _, s := range []string{"tree", "JSON", "yaml", "none"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) succeeded")
	}

	cfg, p, err := Config(context.Background(), &bytes.Buffer{}, FormatNone, Options{})
	if err != nil || p != nil {
		t.Fatalf("Config(none) = %v, %v", p, err)
	}
	if _, ok := cfg.Presenter(); ok {
		t.Error("FormatNone configured a presenter")
	}
	cfg, p, err = Config(context.Background(), &bytes.Buffer{}, FormatJSON, Options{})
	if err != nil || p == nil {
		t.Fatalf("Config(json) = %v, %v", p, err)
	}
	if got, ok := cfg.Presenter(); !ok || got != p {
		t.Error("Config(json) did not wire the presenter")
	}
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf, nil)
	n.SendNotification(callhierarchy.NotOnMemberMessage, callhierarchy.SeverityInformation)
	n.SendNotification("index stale", callhierarchy.SeverityWarning)

	want := "info: Cursor must be on a member name\nwarning: index stale\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
