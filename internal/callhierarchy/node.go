package callhierarchy

import "context"

// Expander computes call edges for a node on demand
type Expander interface {
	Expand(ctx context.Context, node *Node, direction Direction) ([]CallEdge, error)
}

// ExpanderFunc adapts a function to Expander
type ExpanderFunc func(ctx context.Context, node *Node, direction Direction) ([]CallEdge, error)

// Expand calls f
func (f ExpanderFunc) Expand(ctx context.Context, node *Node, direction Direction) ([]CallEdge, error) {
	return f(ctx, node, direction)
}

// CallEdge links a node to a caller or callee. Sites are the call locations
// inside the caller.
type CallEdge struct {
	Node  *Node
	Sites []Location
}

// NodeSpec is the display and identity data a factory fills in
type NodeSpec struct {
	Symbol   SymbolID
	Project  ProjectID
	Label    string
	Kind     string
	Detail   string
	Location *Location
	// KnownCalls are call sites already known at creation; empty for roots
	KnownCalls []Location
}

// Node is an immutable call hierarchy item. Call edges are not computed
// until Expand is called.
type Node struct {
	spec     NodeSpec
	expander Expander
}

// NewNode creates a node. The spec is copied; expander may be nil.
func NewNode(spec NodeSpec, expander Expander) *Node {
	if spec.Location != nil {
		loc := *spec.Location
		spec.Location = &loc
	}
	spec.KnownCalls = append([]Location(nil), spec.KnownCalls...)
	return &Node{spec: spec, expander: expander}
}

func (n *Node) Symbol() SymbolID   { return n.spec.Symbol }
func (n *Node) Project() ProjectID { return n.spec.Project }
func (n *Node) Label() string      { return n.spec.Label }
func (n *Node) Kind() string       { return n.spec.Kind }
func (n *Node) Detail() string     { return n.spec.Detail }

// Location returns a copy of the definition location, or nil if unknown
func (n *Node) Location() *Location {
	if n.spec.Location == nil {
		return nil
	}
	loc := *n.spec.Location
	return &loc
}

// KnownCalls returns a copy of the call sites known at creation
func (n *Node) KnownCalls() []Location {
	return append([]Location(nil), n.spec.KnownCalls...)
}

// Expandable reports whether the node can compute call edges
func (n *Node) Expandable() bool {
	return n.expander != nil
}

// Expand computes the node's callers or callees. It does not modify n.
func (n *Node) Expand(ctx context.Context, direction Direction) ([]CallEdge, error) {
	if n.expander == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.expander.Expand(ctx, n, direction)
}
