package reader

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterParser provides common tree-sitter parsing functionality.
type treeSitterParser struct {
	language *sitter.Language
	lang     string
}

// newTreeSitterParser creates a new tree-sitter parser for the given language.
func newTreeSitterParser(language *sitter.Language, lang string) *treeSitterParser {
	return &treeSitterParser{
		language: language,
		lang:     lang,
	}
}

// parse builds a syntax tree for source. Trees containing syntax errors are
// rejected; the caller owns closing the returned tree.
func (p *treeSitterParser) parse(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", p.lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", p.lang)
	}

	if root := tree.RootNode(); root.HasError() {
		pos := firstErrorPosition(root)
		tree.Close()
		return nil, fmt.Errorf("syntax error at line %d", pos)
	}
	return tree, nil
}

// firstErrorPosition returns the 1-indexed line of the first ERROR or
// MISSING node, or 0 when none is found.
func firstErrorPosition(root *sitter.Node) int {
	line := 0
	walkTree(root, func(n *sitter.Node) bool {
		if line != 0 {
			return false
		}
		if n.IsError() || n.IsMissing() {
			line = int(n.StartPosition().Row) + 1
			return false
		}
		return n.HasError()
	})
	return line
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// fieldText returns the text of the named field child, or "".
func fieldText(node *sitter.Node, field string, source []byte) string {
	return extractNodeText(node.ChildByFieldName(field), source)
}

// startLine returns the 1-indexed line a node starts on.
func startLine(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// children returns every direct child of node.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		out = append(out, node.Child(uint(i)))
	}
	return out
}

// leadingSiblings collects the contiguous run of siblings directly before
// node whose kinds are in accept, nearest last. Blank lines end the run.
func leadingSiblings(node *sitter.Node, accept ...string) []*sitter.Node {
	var run []*sitter.Node
	next := node
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if !kindIn(prev.Kind(), accept) {
			break
		}
		if int(next.StartPosition().Row)-lastRow(prev) > 1 {
			break
		}
		run = append(run, prev)
		next = prev
	}
	for i, j := 0, len(run)-1; i < j; i, j = i+1, j-1 {
		run[i], run[j] = run[j], run[i]
	}
	return run
}

// lastRow returns the row of the last character of node. Line comments
// that include their newline end at column 0 of the following row.
func lastRow(node *sitter.Node) int {
	end := node.EndPosition()
	if end.Column == 0 && end.Row > node.StartPosition().Row {
		return int(end.Row) - 1
	}
	return int(end.Row)
}

func kindIn(kind string, kinds []string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// collapseSpace replaces runs of whitespace with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinDocLines trims a block of comment lines and drops surrounding blank lines.
func joinDocLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
