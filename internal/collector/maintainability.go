//go:build cgo

package collector

import (
	"context"
	"math"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/huangsam/codetrend/schema"
)

// miLines are the line counts feeding the maintainability index.
type miLines struct {
	lloc, sloc, comments, multi int
}

// countMILines classifies non-blank lines as string block, comment or source lines.
func countMILines(src string) miLines {
	var counts miLines
	quote := ""
	for _, line := range splitLines(src) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if quote != "" {
			counts.multi++
			if strings.Contains(trimmed, quote) {
				quote = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
			q := trimmed[:3]
			counts.multi++
			if !strings.Contains(trimmed[3:], q) {
				quote = q
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			counts.comments++
			continue
		}
		counts.sloc++
		counts.lloc++
	}
	return counts
}

// branchCount counts the decision points of a whole module, functions included.
func branchCount(root *sitter.Node) int {
	count := 0
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "if_statement":
			count += 1 + countChildren(n, "elif_clause")
		case "for_statement", "while_statement":
			count++
		case "try_statement":
			count += countChildren(n, "except_clause", "except_group_clause")
		case "with_statement":
			if clause := n.NamedChild(0); clause != nil && clause.Type() == "with_clause" {
				count += countChildren(clause, "with_item")
			}
		case "boolean_operator", "conditional_expression":
			count++
		default:
			if comprehensions[n.Type()] {
				count += countChildren(n, "for_in_clause", "if_clause")
			}
		}
		return true
	})
	return count
}

// maintainabilityIndex combines Halstead volume, complexity, logical lines and
// the comment ratio (in percent) into a score between 0 and 100.
func maintainabilityIndex(volume float64, complexity, lloc int, commentsPercent float64) float64 {
	if volume <= 0 || lloc == 0 {
		return 100
	}
	comments := math.Sqrt(2.46 * commentsPercent * math.Pi / 180)
	mi := 171 - 5.2*math.Log(volume) - 0.23*float64(complexity) - 16.2*math.Log(float64(lloc)) + 50*math.Sin(comments)
	return min(max(mi*100/171, 0), 100)
}

// maintainabilityRank grades an index: A above 19, B above 9, C otherwise.
func maintainabilityRank(mi float64) string {
	switch {
	case mi > 19:
		return "A"
	case mi > 9:
		return "B"
	default:
		return "C"
	}
}

// analyzeMaintainability computes the maintainability index and rank of a module.
// String blocks count as comments.
func analyzeMaintainability(ctx context.Context, src []byte) (schema.Entry, error) {
	tree, err := parseStrict(ctx, src)
	if err != nil {
		return schema.Entry{}, err
	}
	defer tree.Close()
	root := tree.RootNode()

	lines := countMILines(string(src))
	commentsPercent := 0.0
	if lines.sloc > 0 {
		commentsPercent = float64(lines.comments+lines.multi) / float64(lines.sloc) * 100
	}

	halstead := newHalsteadVisitor(src, "", true)
	halstead.visit(root)

	mi := maintainabilityIndex(halstead.counts.volume(), branchCount(root)+1, lines.lloc, commentsPercent)
	return schema.NewFileEntry(schema.Metrics{
		"mi":   mi,
		"rank": maintainabilityRank(mi),
	}, nil), nil
}
