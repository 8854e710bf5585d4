package present

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"callroot/internal/callhierarchy"
	"callroot/internal/slogutil"
)

// Format names an output format
type Format string

const (
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatNone configures no presenter at all
	FormatNone Format = "none"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTree, FormatJSON, FormatYAML, FormatNone:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (want tree, json, yaml or none)", s)
	}
}

// Options control how deep presenters expand the root
type Options struct {
	Direction callhierarchy.Direction
	MaxDepth  int
	Logger    *slog.Logger
}

// Result is the document written by the JSON and YAML presenters
type Result struct {
	Direction callhierarchy.Direction `json:"direction" yaml:"direction"`
	Root      *TreeNode               `json:"root" yaml:"root"`
}

// Presenter expands a root and writes it. PresentRoot cannot return an
// error, so failures are kept for Err.
type Presenter struct {
	ctx    context.Context
	w      io.Writer
	format Format
	opts   Options
	logger *slog.Logger

	mu  sync.Mutex
	err error
}

// New creates a presenter writing format to w. ctx bounds expansion.
func New(ctx context.Context, w io.Writer, format Format, opts Options) (*Presenter, error) {
	switch format {
	case FormatTree, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("no presenter for format %q", format)
	}
	if opts.Direction == "" {
		opts.Direction = callhierarchy.DirectionCallers
	}
	return &Presenter{
		ctx:    ctx,
		w:      w,
		format: format,
		opts:   opts,
		logger: slogutil.OrDiscard(opts.Logger),
	}, nil
}

// Config returns the pipeline presenter configuration for format. FormatNone
// yields callhierarchy.NoPresenter.
func Config(ctx context.Context, w io.Writer, format Format, opts Options) (callhierarchy.PresenterConfig, *Presenter, error) {
	if format == FormatNone {
		return callhierarchy.NoPresenter(), nil, nil
	}
	p, err := New(ctx, w, format, opts)
	if err != nil {
		return callhierarchy.PresenterConfig{}, nil, err
	}
	return callhierarchy.SinglePresenter(p), p, nil
}

// PresentRoot implements callhierarchy.Presenter
func (p *Presenter) PresentRoot(node *callhierarchy.Node) {
	tree, err := Expand(p.ctx, node, p.opts.Direction, p.opts.MaxDepth)
	if err == nil {
		err = p.write(tree)
	}
	if err != nil {
		p.logger.Error("Failed to present call hierarchy", "symbol", string(node.Symbol()), "error", err.Error())
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
	}
}

// Err returns the first expansion or write error
func (p *Presenter) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Presenter) write(tree *TreeNode) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(Result{Direction: p.opts.Direction, Root: tree})
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(Result{Direction: p.opts.Direction, Root: tree}); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(p.w, FormatTreeText(tree, p.opts.Direction))
		return err
	}
}

// FormatTreeText renders a tree with box-drawing guides, one node per line
func FormatTreeText(root *TreeNode, direction callhierarchy.Direction) string {
	var b strings.Builder
	b.WriteString(nodeLine(root))
	b.WriteString("\n")
	if len(root.Children) > 0 {
		fmt.Fprintf(&b, "%s:\n", direction)
	}
	writeChildren(&b, root.Children, "")
	return b.String()
}

func writeChildren(b *strings.Builder, children []*TreeNode, prefix string) {
	for i, child := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(nodeLine(child))
		b.WriteString("\n")
		writeChildren(b, child.Children, prefix+indent)
	}
}

func nodeLine(n *TreeNode) string {
	var b strings.Builder
	b.WriteString(n.Label)
	if n.Kind != "" {
		fmt.Fprintf(&b, " [%s]", n.Kind)
	}
	if n.Location != nil {
		fmt.Fprintf(&b, "  %s", formatLocation(*n.Location))
	}
	switch len(n.CallSites) {
	case 0:
	case 1:
		b.WriteString("  (1 call)")
	default:
		fmt.Fprintf(&b, "  (%d calls)", len(n.CallSites))
	}
	if n.Recursive {
		b.WriteString("  (recursive)")
	}
	if n.Truncated {
		b.WriteString("  ...")
	}
	return b.String()
}

// formatLocation prints a location as path:line:column, one-based
func formatLocation(loc callhierarchy.Location) string {
	return fmt.Sprintf("%s:%d:%d", loc.Path, loc.StartLine+1, loc.StartColumn+1)
}
