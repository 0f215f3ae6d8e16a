package reader

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/mvp-joe/docsmith/internal/model"
)

// cMacroReader reads the #define macros of public C headers. Value-less
// defines (include guards, feature flags) and reserved names starting with
// an underscore are skipped.
type cMacroReader struct {
	*treeSitterParser
}

// NewCMacroReader creates a reader for C preprocessor macros.
func NewCMacroReader() *cMacroReader {
	lang := sitter.NewLanguage(c.Language())
	return &cMacroReader{
		treeSitterParser: newTreeSitterParser(lang, "c"),
	}
}

// Read reads the macros of every header under the given source roots.
func (r *cMacroReader) Read(ctx context.Context, sourcePaths []string, opts Options) ([]model.Namespace, error) {
	return readSourceTree(ctx, r, sourcePaths, opts)
}

func (r *cMacroReader) includePatterns() []string {
	return []string{"**/*.h"}
}

func (r *cMacroReader) readFile(rel string, source []byte) ([]model.Namespace, error) {
	tree, err := r.parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	ns := model.Namespace{Name: cNamespaceName(rel), Publics: []model.Symbol{}}

	walkCItems(tree.RootNode(), func(item *sitter.Node) {
		switch item.Kind() {
		case "preproc_def":
			if item.ChildByFieldName("value") == nil {
				return
			}
			if sym, ok := r.define(item, source, rel); ok {
				sym.Signature = collapseSpace(fieldText(item, "value", source))
				ns.Publics = append(ns.Publics, sym)
			}
		case "preproc_function_def":
			if sym, ok := r.define(item, source, rel); ok {
				sym.Arglists = []string{collapseSpace(fieldText(item, "parameters", source))}
				ns.Publics = append(ns.Publics, sym)
			}
		}
	})

	return []model.Namespace{ns}, nil
}

func (r *cMacroReader) define(node *sitter.Node, source []byte, rel string) (model.Symbol, bool) {
	name := fieldText(node, "name", source)
	if name == "" || strings.HasPrefix(name, "_") {
		return model.Symbol{}, false
	}
	return model.Symbol{
		Name:     name,
		Kind:     model.KindMacro,
		Metadata: cItemMetadata(node, source),
		File:     rel,
		Line:     startLine(node),
	}, true
}
