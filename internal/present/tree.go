// Package present renders call hierarchy roots for the command line.
package present

import (
	"context"

	"callroot/internal/callhierarchy"
)

// TreeNode is a fully expanded, serializable view of a hierarchy node
type TreeNode struct {
	Symbol   string                  `json:"symbol" yaml:"symbol"`
	Project  string                  `json:"project" yaml:"project"`
	Label    string                  `json:"label" yaml:"label"`
	Kind     string                  `json:"kind" yaml:"kind"`
	Detail   string                  `json:"detail,omitempty" yaml:"detail,omitempty"`
	Location *callhierarchy.Location `json:"location,omitempty" yaml:"location,omitempty"`
	// CallSites are where this node calls, or is called by, its parent
	CallSites []callhierarchy.Location `json:"callSites,omitempty" yaml:"callSites,omitempty"`
	Children  []*TreeNode              `json:"children,omitempty" yaml:"children,omitempty"`
	// Truncated is set when the depth limit stopped expansion
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	// Recursive is set when the symbol already appears on the path from the root
	Recursive bool `json:"recursive,omitempty" yaml:"recursive,omitempty"`
}

// Expand walks node's call edges in direction down to maxDepth levels. A
// maxDepth of zero returns the root alone.
func Expand(ctx context.Context, node *callhierarchy.Node, direction callhierarchy.Direction, maxDepth int) (*TreeNode, error) {
	return expand(ctx, node, nil, direction, maxDepth, map[callhierarchy.SymbolID]bool{})
}

func expand(ctx context.Context, node *callhierarchy.Node, sites []callhierarchy.Location, direction callhierarchy.Direction, depth int, onPath map[callhierarchy.SymbolID]bool) (*TreeNode, error) {
	tn := &TreeNode{
		Symbol:    string(node.Symbol()),
		Project:   string(node.Project()),
		Label:     node.Label(),
		Kind:      node.Kind(),
		Detail:    node.Detail(),
		Location:  node.Location(),
		CallSites: sites,
	}
	if onPath[node.Symbol()] {
		tn.Recursive = true
		return tn, nil
	}
	if !node.Expandable() {
		return tn, nil
	}
	if depth <= 0 {
		tn.Truncated = true
		return tn, nil
	}

	edges, err := node.Expand(ctx, direction)
	if err != nil {
		return nil, err
	}

	onPath[node.Symbol()] = true
	defer delete(onPath, node.Symbol())

	for _, edge := range edges {
		child, err := expand(ctx, edge.Node, edge.Sites, direction, depth-1, onPath)
		if err != nil {
			return nil, err
		}
		tn.Children = append(tn.Children, child)
	}
	return tn, nil
}
