package reader

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/mvp-joe/docsmith/internal/model"
)

var (
	rustSinceRe = regexp.MustCompile(`since\s*=\s*"([^"]*)"`)
	rustAttrRe  = regexp.MustCompile(`^#!?\[\s*([A-Za-z_][A-Za-z0-9_:]*)`)
)

// rustReader reads Rust crates. Namespaces are modules.
type rustReader struct {
	*treeSitterParser
}

// NewRustReader creates a new Rust reader.
func NewRustReader() *rustReader {
	lang := sitter.NewLanguage(rust.Language())
	return &rustReader{
		treeSitterParser: newTreeSitterParser(lang, "rust"),
	}
}

// Read reads every module under the given source roots. Modules declared
// without pub or with #[doc(hidden)] are marked NoDoc, and so is every
// module below them.
func (r *rustReader) Read(ctx context.Context, sourcePaths []string, opts Options) ([]model.Namespace, error) {
	crate := &rustCrate{reader: r, hidden: make(map[string]bool)}
	namespaces, err := readSourceTree(ctx, crate, sourcePaths, opts)
	if err != nil {
		return nil, err
	}
	for i := range namespaces {
		if crate.isHidden(namespaces[i].Name) {
			namespaces[i].NoDoc = true
		}
	}
	return namespaces, nil
}

// rustCrate collects the hidden module declarations of one Read call.
type rustCrate struct {
	reader *rustReader
	hidden map[string]bool
}

func (c *rustCrate) includePatterns() []string {
	return []string{"**/*.rs"}
}

func (c *rustCrate) readFile(rel string, source []byte) ([]model.Namespace, error) {
	tree, err := c.reader.parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	meta := c.reader.innerMetadata(root, source)
	return c.reader.readModule(rustModulePath(rel), root, source, rel, meta, c.hidden), nil
}

// isHidden reports whether name or one of its parent modules was declared
// hidden.
func (c *rustCrate) isHidden(name string) bool {
	for {
		if c.hidden[name] {
			return true
		}
		i := strings.LastIndex(name, "::")
		if i < 0 {
			return false
		}
		name = name[:i]
	}
}

// rustModulePath maps a crate-relative file to its module path:
// lib.rs -> crate, net/mod.rs -> crate::net, net/http.rs -> crate::net::http.
func rustModulePath(rel string) string {
	parts := strings.Split(strings.TrimSuffix(rel, ".rs"), "/")
	last := parts[len(parts)-1]
	if last == "mod" || (len(parts) == 1 && (last == "lib" || last == "main")) {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(append([]string{"crate"}, parts...), "::")
}

// readModule reads the items of one module body. The module itself comes
// first in the result, followed by inline submodules in source order.
// Submodules that must not be documented are recorded in hidden.
func (r *rustReader) readModule(name string, body *sitter.Node, source []byte, rel string, meta model.Metadata, hidden map[string]bool) []model.Namespace {
	ns := model.Namespace{Name: name, Metadata: meta, Publics: []model.Symbol{}}
	var nested []model.Namespace
	var impls []*sitter.Node
	typeIndex := make(map[string]int)

	for _, item := range children(body) {
		switch item.Kind() {
		case "function_item":
			if isRustPublic(item, source) {
				ns.Publics = append(ns.Publics, r.function(item, source, rel))
			}
		case "macro_definition":
			if sym, ok := r.macro(item, source, rel); ok {
				ns.Publics = append(ns.Publics, sym)
			}
		case "struct_item", "enum_item", "union_item", "type_item":
			if isRustPublic(item, source) {
				sym := r.typeItem(item, source, rel)
				typeIndex[sym.Name] = len(ns.Publics)
				ns.Publics = append(ns.Publics, sym)
			}
		case "trait_item":
			if isRustPublic(item, source) {
				ns.Publics = append(ns.Publics, r.trait(item, source, rel))
			}
		case "const_item", "static_item":
			if isRustPublic(item, source) {
				ns.Publics = append(ns.Publics, r.value(item, source, rel))
			}
		case "mod_item":
			modName := name + "::" + fieldText(item, "name", source)
			modMeta, _ := r.itemMetadata(item, source)
			public := isRustPublic(item, source)
			if !public || modMeta.NoDoc {
				hidden[modName] = true
			}
			modBody := item.ChildByFieldName("body")
			if modBody == nil || !public {
				continue
			}
			inner := r.innerMetadata(modBody, source)
			if inner.Doc != "" {
				modMeta.Doc = strings.TrimSpace(modMeta.Doc + "\n\n" + inner.Doc)
			}
			modMeta.NoDoc = modMeta.NoDoc || inner.NoDoc
			nested = append(nested, r.readModule(modName, modBody, source, rel, modMeta, hidden)...)
		case "impl_item":
			if item.ChildByFieldName("trait") == nil {
				impls = append(impls, item)
			}
		}
	}

	for _, impl := range impls {
		idx, ok := typeIndex[rustImplTypeName(impl, source)]
		if !ok {
			continue
		}
		for _, child := range children(impl.ChildByFieldName("body")) {
			if child.Kind() == "function_item" && isRustPublic(child, source) {
				ns.Publics[idx].Members = append(ns.Publics[idx].Members, r.function(child, source, rel))
			}
		}
	}

	return append([]model.Namespace{ns}, nested...)
}

func (r *rustReader) function(node *sitter.Node, source []byte, rel string) model.Symbol {
	meta, _ := r.itemMetadata(node, source)
	return model.Symbol{
		Name:     fieldText(node, "name", source),
		Kind:     model.KindFunction,
		Arglists: []string{rustArglist(node, source)},
		Metadata: meta,
		File:     rel,
		Line:     startLine(node),
	}
}

// rustArglist renders "(params) -> ret" for functions and signatures.
func rustArglist(node *sitter.Node, source []byte) string {
	args := collapseSpace(fieldText(node, "parameters", source))
	if args == "" {
		args = "()"
	}
	if ret := fieldText(node, "return_type", source); ret != "" {
		args += " -> " + collapseSpace(ret)
	}
	return args
}

// macro reads an exported macro_rules! definition.
func (r *rustReader) macro(node *sitter.Node, source []byte, rel string) (model.Symbol, bool) {
	meta, attrs := r.itemMetadata(node, source)
	if !attrs["macro_export"] {
		return model.Symbol{}, false
	}

	var arglists []string
	for _, rule := range findChildrenByType(node, "macro_rule") {
		if left := fieldText(rule, "left", source); left != "" {
			arglists = append(arglists, collapseSpace(left))
		}
	}

	return model.Symbol{
		Name:     fieldText(node, "name", source),
		Kind:     model.KindMacro,
		Arglists: arglists,
		Metadata: meta,
		File:     rel,
		Line:     startLine(node),
	}, true
}

// typeItem reads structs, enums, unions and type aliases. Public fields and
// enum variants become members.
func (r *rustReader) typeItem(node *sitter.Node, source []byte, rel string) model.Symbol {
	meta, _ := r.itemMetadata(node, source)
	sym := model.Symbol{
		Name:     fieldText(node, "name", source),
		Kind:     model.KindType,
		Metadata: meta,
		File:     rel,
		Line:     startLine(node),
	}

	body := node.ChildByFieldName("body")
	switch node.Kind() {
	case "type_item":
		sym.Signature = collapseSpace(fieldText(node, "type", source))
	case "struct_item", "union_item":
		sym.Signature = strings.TrimSuffix(node.Kind(), "_item")
		if body == nil || body.Kind() != "field_declaration_list" {
			break
		}
		for _, field := range findChildrenByType(body, "field_declaration") {
			if !isRustPublic(field, source) {
				continue
			}
			fieldMeta, _ := r.itemMetadata(field, source)
			sym.Members = append(sym.Members, model.Symbol{
				Name:      fieldText(field, "name", source),
				Kind:      model.KindValue,
				Signature: collapseSpace(fieldText(field, "type", source)),
				Metadata:  fieldMeta,
				File:      rel,
				Line:      startLine(field),
			})
		}
	case "enum_item":
		sym.Signature = "enum"
		for _, variant := range findChildrenByType(body, "enum_variant") {
			variantMeta, _ := r.itemMetadata(variant, source)
			sym.Members = append(sym.Members, model.Symbol{
				Name:     fieldText(variant, "name", source),
				Kind:     model.KindValue,
				Metadata: variantMeta,
				File:     rel,
				Line:     startLine(variant),
			})
		}
	}
	return sym
}

// trait reads a public trait; its methods become members.
func (r *rustReader) trait(node *sitter.Node, source []byte, rel string) model.Symbol {
	meta, _ := r.itemMetadata(node, source)
	sym := model.Symbol{
		Name:     fieldText(node, "name", source),
		Kind:     model.KindTrait,
		Metadata: meta,
		File:     rel,
		Line:     startLine(node),
	}
	for _, child := range children(node.ChildByFieldName("body")) {
		switch child.Kind() {
		case "function_signature_item", "function_item":
			sym.Members = append(sym.Members, r.function(child, source, rel))
		case "const_item":
			sym.Members = append(sym.Members, r.value(child, source, rel))
		}
	}
	return sym
}

func (r *rustReader) value(node *sitter.Node, source []byte, rel string) model.Symbol {
	meta, _ := r.itemMetadata(node, source)
	return model.Symbol{
		Name:      fieldText(node, "name", source),
		Kind:      model.KindValue,
		Signature: collapseSpace(fieldText(node, "type", source)),
		Metadata:  meta,
		File:      rel,
		Line:      startLine(node),
	}
}

// itemMetadata reads the outer doc comments and attributes directly above
// an item. The returned set holds the names of every attribute seen.
func (r *rustReader) itemMetadata(node *sitter.Node, source []byte) (model.Metadata, map[string]bool) {
	var meta model.Metadata
	attrs := make(map[string]bool)
	var docs []string

	for _, n := range leadingSiblings(node, "line_comment", "block_comment", "attribute_item") {
		text := strings.TrimRight(extractNodeText(n, source), "\r\n")
		switch n.Kind() {
		case "line_comment":
			if strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////") {
				docs = append(docs, stripCommentPrefix(text, "///"))
			}
		case "block_comment":
			if strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/***") {
				docs = append(docs, blockCommentLines(text)...)
			}
		case "attribute_item":
			applyRustAttribute(text, &meta, attrs)
		}
	}

	meta.Doc = joinDocLines(docs)
	return meta, attrs
}

// innerMetadata reads //! comments and #![...] attributes at the top of a
// file or inline module body.
func (r *rustReader) innerMetadata(body *sitter.Node, source []byte) model.Metadata {
	var meta model.Metadata
	var docs []string
	attrs := make(map[string]bool)

	for _, n := range children(body) {
		text := strings.TrimRight(extractNodeText(n, source), "\r\n")
		switch n.Kind() {
		case "{", "}":
			continue
		case "line_comment":
			if strings.HasPrefix(text, "//!") {
				docs = append(docs, stripCommentPrefix(text, "//!"))
			}
			continue
		case "block_comment":
			if strings.HasPrefix(text, "/*!") {
				docs = append(docs, blockCommentLines(text)...)
			}
			continue
		case "inner_attribute_item":
			applyRustAttribute(text, &meta, attrs)
			continue
		}
		break
	}

	meta.Doc = joinDocLines(docs)
	return meta
}

// applyRustAttribute records the documentation-relevant attributes:
// deprecated, stable(since) and doc(hidden).
func applyRustAttribute(text string, meta *model.Metadata, attrs map[string]bool) {
	m := rustAttrRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	name := m[1]
	attrs[name] = true

	switch name {
	case "deprecated":
		meta.Deprecated = "true"
		if since := rustSinceRe.FindStringSubmatch(text); since != nil {
			meta.Deprecated = since[1]
		}
	case "stable":
		if since := rustSinceRe.FindStringSubmatch(text); since != nil {
			meta.Added = since[1]
		}
	case "doc":
		if strings.Contains(collapseSpace(text), "hidden") {
			meta.NoDoc = true
		}
	}
}

// isRustPublic reports whether node carries a bare pub visibility.
func isRustPublic(node *sitter.Node, source []byte) bool {
	vis := findChildByType(node, "visibility_modifier")
	return vis != nil && strings.TrimSpace(extractNodeText(vis, source)) == "pub"
}

// rustImplTypeName returns the base type name an impl block targets.
func rustImplTypeName(impl *sitter.Node, source []byte) string {
	typeNode := impl.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	if typeNode.Kind() == "generic_type" {
		return fieldText(typeNode, "type", source)
	}
	return extractNodeText(typeNode, source)
}
