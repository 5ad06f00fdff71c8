//go:build cgo

package collector

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrNoCGO is returned when the collectors are unavailable due to missing CGO.
var ErrNoCGO = errors.New("python collectors require CGO (tree-sitter)")

// Available reports whether the tree-sitter collectors can run.
func Available() bool {
	return true
}

// parsePython parses source into a tree-sitter tree. Trees with syntax errors
// are returned as well; use syntaxError to reject them.
func parsePython(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree, nil
}

// parseStrict parses source and fails on the first syntax error.
func parseStrict(ctx context.Context, src []byte) (*sitter.Tree, error) {
	tree, err := parsePython(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := syntaxError(tree.RootNode()); err != nil {
		tree.Close()
		return nil, err
	}
	return tree, nil
}

// syntaxError reports the first error or missing node of the tree, if any.
func syntaxError(root *sitter.Node) error {
	if !root.HasError() {
		return nil
	}
	var bad *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if bad != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			bad = n
			return false
		}
		return n.HasError()
	})
	if bad == nil {
		return errors.New("invalid syntax")
	}
	pos := bad.StartPoint()
	return fmt.Errorf("invalid syntax (line %d, column %d)", pos.Row+1, pos.Column+1)
}

// walk visits n and its descendants in source order. Children are skipped when
// visit returns false.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := range int(n.ChildCount()) {
		walk(n.Child(i), visit)
	}
}

// children returns the direct children of n.
func children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := range int(n.ChildCount()) {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// namedChildren returns the direct named children of n.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := range int(n.NamedChildCount()) {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// countChildren counts the direct children of n with one of the given types.
func countChildren(n *sitter.Node, types ...string) int {
	count := 0
	for _, c := range children(n) {
		for _, t := range types {
			if c.Type() == t {
				count++
				break
			}
		}
	}
	return count
}

// unwrapParens strips enclosing parenthesized expressions.
func unwrapParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n
}

// definition returns the function or class wrapped by a decorated definition.
func definition(n *sitter.Node) *sitter.Node {
	if n.Type() == "decorated_definition" {
		return n.ChildByFieldName("definition")
	}
	return n
}

// lineSpan returns the 1-based first and last line of n.
func lineSpan(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}
