package reader

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/mvp-joe/docsmith/internal/model"
)

// cContainerKinds are nodes whose children are themselves top-level items.
var cContainerKinds = []string{
	"translation_unit",
	"preproc_ifdef",
	"preproc_if",
	"preproc_else",
	"preproc_elif",
	"linkage_specification",
	"declaration_list",
}

// cReader reads public C headers. Preprocessor definitions are not visible
// to it; see cMacroReader.
type cReader struct {
	*treeSitterParser
}

// NewCReader creates a new C header reader.
func NewCReader() *cReader {
	lang := sitter.NewLanguage(c.Language())
	return &cReader{
		treeSitterParser: newTreeSitterParser(lang, "c"),
	}
}

// Read reads every header under the given source roots.
func (r *cReader) Read(ctx context.Context, sourcePaths []string, opts Options) ([]model.Namespace, error) {
	return readSourceTree(ctx, r, sourcePaths, opts)
}

func (r *cReader) includePatterns() []string {
	return []string{"**/*.h"}
}

func (r *cReader) readFile(rel string, source []byte) ([]model.Namespace, error) {
	tree, err := r.parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	ns := model.Namespace{
		Name:     cNamespaceName(rel),
		Metadata: cFileMetadata(root, source),
		Publics:  []model.Symbol{},
	}

	walkCItems(root, func(item *sitter.Node) {
		switch item.Kind() {
		case "declaration":
			ns.Publics = append(ns.Publics, r.declaration(item, source, rel)...)
		case "function_definition":
			if sym, ok := r.inlineFunction(item, source, rel); ok {
				ns.Publics = append(ns.Publics, sym)
			}
		case "type_definition":
			if sym, ok := r.typedef(item, source, rel); ok {
				ns.Publics = append(ns.Publics, sym)
			}
		case "struct_specifier", "union_specifier", "enum_specifier":
			if sym, ok := r.tagged(item, source, rel); ok {
				ns.Publics = append(ns.Publics, sym)
			}
		}
	})

	return []model.Namespace{ns}, nil
}

// cNamespaceName maps a header to its namespace: lib/core.h -> lib.core.
func cNamespaceName(rel string) string {
	rel = strings.TrimSuffix(rel, ".h")
	return strings.ReplaceAll(rel, "/", ".")
}

// walkCItems calls fn for every top-level item, descending through
// preprocessor conditionals and linkage blocks.
func walkCItems(node *sitter.Node, fn func(*sitter.Node)) {
	for _, child := range children(node) {
		if kindIn(child.Kind(), cContainerKinds) {
			walkCItems(child, fn)
			continue
		}
		fn(child)
	}
}

// declaration reads prototypes and extern variables. Static declarations
// are private to their translation unit and skipped.
func (r *cReader) declaration(node *sitter.Node, source []byte, rel string) []model.Symbol {
	if hasStorageClass(node, source, "static") {
		return nil
	}

	meta := cItemMetadata(node, source)
	typeText := collapseSpace(fieldText(node, "type", source))

	var symbols []model.Symbol
	for _, decl := range childrenByField(node, "declarator") {
		if fn := findFunctionDeclarator(decl); fn != nil {
			name := declaratorName(fn, source)
			if name == "" {
				continue
			}
			symbols = append(symbols, model.Symbol{
				Name:      name,
				Kind:      model.KindFunction,
				Arglists:  []string{collapseSpace(fieldText(fn, "parameters", source))},
				Signature: typeText,
				Metadata:  meta.Clone(),
				File:      rel,
				Line:      startLine(node),
			})
			continue
		}

		name := declaratorName(decl, source)
		if name == "" {
			continue
		}
		symbols = append(symbols, model.Symbol{
			Name:      name,
			Kind:      model.KindValue,
			Signature: typeText,
			Metadata:  meta.Clone(),
			File:      rel,
			Line:      startLine(node),
		})
	}
	return symbols
}

// inlineFunction reads function definitions in headers. Only inline or
// non-static definitions are public.
func (r *cReader) inlineFunction(node *sitter.Node, source []byte, rel string) (model.Symbol, bool) {
	if hasStorageClass(node, source, "static") && !hasStorageClass(node, source, "inline") {
		return model.Symbol{}, false
	}
	fn := findFunctionDeclarator(node.ChildByFieldName("declarator"))
	if fn == nil {
		return model.Symbol{}, false
	}
	name := declaratorName(fn, source)
	if name == "" {
		return model.Symbol{}, false
	}
	return model.Symbol{
		Name:      name,
		Kind:      model.KindFunction,
		Arglists:  []string{collapseSpace(fieldText(fn, "parameters", source))},
		Signature: collapseSpace(fieldText(node, "type", source)),
		Metadata:  cItemMetadata(node, source),
		File:      rel,
		Line:      startLine(node),
	}, true
}

// typedef reads a type definition; an inline struct, union or enum body
// contributes members.
func (r *cReader) typedef(node *sitter.Node, source []byte, rel string) (model.Symbol, bool) {
	var name string
	for _, decl := range childrenByField(node, "declarator") {
		if name = declaratorName(decl, source); name != "" {
			break
		}
	}
	if name == "" {
		return model.Symbol{}, false
	}

	typeNode := node.ChildByFieldName("type")
	sym := model.Symbol{
		Name:     name,
		Kind:     model.KindType,
		Metadata: cItemMetadata(node, source),
		File:     rel,
		Line:     startLine(node),
	}
	if typeNode != nil && typeNode.ChildByFieldName("body") != nil {
		sym.Signature = strings.TrimSuffix(typeNode.Kind(), "_specifier")
		sym.Members = cMembers(typeNode, source, rel)
	} else {
		sym.Signature = collapseSpace(extractNodeText(typeNode, source))
	}
	return sym, true
}

// tagged reads a named struct, union or enum declared at top level.
func (r *cReader) tagged(node *sitter.Node, source []byte, rel string) (model.Symbol, bool) {
	name := fieldText(node, "name", source)
	if name == "" || node.ChildByFieldName("body") == nil {
		return model.Symbol{}, false
	}
	return model.Symbol{
		Name:      name,
		Kind:      model.KindType,
		Signature: strings.TrimSuffix(node.Kind(), "_specifier"),
		Members:   cMembers(node, source, rel),
		Metadata:  cItemMetadata(node, source),
		File:      rel,
		Line:      startLine(node),
	}, true
}

// cMembers returns struct/union fields or enum constants of a specifier.
func cMembers(specifier *sitter.Node, source []byte, rel string) []model.Symbol {
	body := specifier.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var members []model.Symbol
	switch body.Kind() {
	case "field_declaration_list":
		for _, field := range findChildrenByType(body, "field_declaration") {
			typeText := collapseSpace(fieldText(field, "type", source))
			for _, decl := range childrenByField(field, "declarator") {
				name := declaratorName(decl, source)
				if name == "" {
					continue
				}
				members = append(members, model.Symbol{
					Name:      name,
					Kind:      model.KindValue,
					Signature: typeText,
					Metadata:  cItemMetadata(field, source),
					File:      rel,
					Line:      startLine(field),
				})
			}
		}
	case "enumerator_list":
		for _, enumerator := range findChildrenByType(body, "enumerator") {
			members = append(members, model.Symbol{
				Name:      fieldText(enumerator, "name", source),
				Kind:      model.KindValue,
				Signature: collapseSpace(fieldText(enumerator, "value", source)),
				Metadata:  cItemMetadata(enumerator, source),
				File:      rel,
				Line:      startLine(enumerator),
			})
		}
	}
	return members
}

// childrenByField returns every child stored under the given field name.
func childrenByField(node *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.FieldNameForChild(uint32(i)) == field {
			out = append(out, node.Child(uint(i)))
		}
	}
	return out
}

// hasStorageClass reports whether a declaration carries the given
// storage-class or function specifier keyword.
func hasStorageClass(node *sitter.Node, source []byte, keyword string) bool {
	for _, child := range children(node) {
		switch child.Kind() {
		case "storage_class_specifier", "function_specifier":
			if strings.TrimSpace(extractNodeText(child, source)) == keyword {
				return true
			}
		}
	}
	return false
}

// findFunctionDeclarator finds the function_declarator inside a declarator,
// looking through pointer and parenthesized declarators.
func findFunctionDeclarator(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "function_declarator":
			return node
		case "pointer_declarator", "parenthesized_declarator", "attributed_declarator", "init_declarator":
			next := node.ChildByFieldName("declarator")
			if next == nil {
				next = findChildByType(node, "function_declarator")
			}
			node = next
		default:
			return nil
		}
	}
	return nil
}

// declaratorName returns the identifier a declarator introduces.
func declaratorName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "identifier", "field_identifier", "type_identifier", "primitive_type":
		return extractNodeText(node, source)
	}

	if next := node.ChildByFieldName("declarator"); next != nil {
		return declaratorName(next, source)
	}

	for _, child := range children(node) {
		switch child.Kind() {
		case "identifier", "field_identifier", "type_identifier":
			return extractNodeText(child, source)
		}
	}
	return ""
}

// cItemMetadata reads the doc comment directly above an item.
func cItemMetadata(node *sitter.Node, source []byte) model.Metadata {
	var lines []string
	for i, comment := range leadingSiblings(node, "comment") {
		// A comment trailing the previous item on its line documents that item.
		if i == 0 {
			if prev := comment.PrevSibling(); prev != nil && prev.EndPosition().Row == comment.StartPosition().Row && prev.EndPosition().Column > 0 {
				continue
			}
		}
		text := commentLines(extractNodeText(comment, source))
		if hasFileTag(text) {
			continue
		}
		lines = append(lines, text...)
	}
	return parseDocTags(lines)
}

// cFileMetadata reads the leading comment block of a header as namespace
// docs. The block only documents the file when it carries @file, or when a
// blank line, a preprocessor directive or the end of the file follows it;
// otherwise it belongs to the first item.
func cFileMetadata(root *sitter.Node, source []byte) model.Metadata {
	var block []*sitter.Node
	for _, child := range children(root) {
		if child.Kind() != "comment" {
			break
		}
		if n := len(block); n > 0 && int(child.StartPosition().Row)-lastRow(block[n-1]) > 1 {
			break
		}
		block = append(block, child)
	}
	if len(block) == 0 {
		return model.Metadata{}
	}

	var lines []string
	for _, comment := range block {
		lines = append(lines, commentLines(extractNodeText(comment, source))...)
	}
	if !hasFileTag(lines) && !detachedComment(block[len(block)-1]) {
		return model.Metadata{}
	}
	return parseDocTags(lines)
}

// detachedComment reports whether comment is not attached to a following
// declaration.
func detachedComment(comment *sitter.Node) bool {
	next := comment.NextSibling()
	if next == nil {
		return true
	}
	return strings.HasPrefix(next.Kind(), "preproc_") ||
		int(next.StartPosition().Row)-lastRow(comment) > 1
}

func hasFileTag(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "@file" || trimmed == `\file` ||
			strings.HasPrefix(trimmed, "@file ") || strings.HasPrefix(trimmed, `\file `) {
			return true
		}
	}
	return false
}

// parseDocTags splits doc-comment lines into prose and the tags
// @since, @deprecated and @internal (either @ or \ prefixed).
func parseDocTags(lines []string) model.Metadata {
	var meta model.Metadata
	var prose []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "@") && !strings.HasPrefix(trimmed, `\`) {
			prose = append(prose, line)
			continue
		}

		tag, rest, _ := strings.Cut(trimmed[1:], " ")
		rest = strings.TrimSpace(rest)
		switch tag {
		case "since":
			meta.Added = rest
		case "deprecated":
			meta.Deprecated = rest
			if rest == "" {
				meta.Deprecated = "true"
			}
		case "internal":
			meta.NoDoc = true
		case "file", "brief":
			if tag == "brief" && rest != "" {
				prose = append(prose, rest)
			}
		default:
			prose = append(prose, line)
		}
	}

	meta.Doc = joinDocLines(prose)
	return meta
}
