package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mvp-joe/docsmith/internal/model"
)

// markdownWriter renders an index page plus one page per namespace and
// per document under the output path.
type markdownWriter struct {
	logger *slog.Logger
}

// NewMarkdownWriter creates the markdown writer.
func NewMarkdownWriter(logger *slog.Logger) Writer {
	return &markdownWriter{logger: logger}
}

func (w *markdownWriter) Write(ctx context.Context, input model.RenderInput) error {
	out, err := newAtomicWriter(input.Options.OutputPath)
	if err != nil {
		return err
	}
	defer out.close()

	namespaces := visible(input.Namespaces)
	docPages := documentPages(input.Documents)

	if err := out.writeFile("index.md", []byte(renderIndex(input, namespaces, docPages))); err != nil {
		return err
	}

	for _, ns := range namespaces {
		page, err := renderNamespace(input.Options, ns)
		if err != nil {
			return err
		}
		if err := out.writeFile(namespacePage(ns.Name), []byte(page)); err != nil {
			return err
		}
	}

	for i, doc := range input.Documents {
		if err := out.writeFile(docPages[i], []byte(doc.Content)); err != nil {
			return err
		}
	}

	// Pages of namespaces and documents gone since the last run.
	if err := out.prune("namespaces", "docs"); err != nil {
		return err
	}

	w.logger.Info("wrote markdown docs",
		"output", input.Options.OutputPath,
		"namespaces", len(namespaces),
		"documents", len(input.Documents))
	return nil
}

// pageName turns a namespace or document name into a file name.
func pageName(name string) string {
	return strings.NewReplacer("::", ".", "/", ".", "\\", ".").Replace(name) + ".md"
}

func namespacePage(name string) string { return "namespaces/" + pageName(name) }

// documentPages assigns each document a page. Documents sharing a name get
// a numeric suffix in input order: readme.md, readme-2.md.
func documentPages(docs []model.Document) []string {
	pages := make([]string, len(docs))
	taken := make(map[string]bool, len(docs))
	for i, doc := range docs {
		base := strings.TrimSuffix(pageName(doc.Name), ".md")
		page := "docs/" + base + ".md"
		for n := 2; taken[page]; n++ {
			page = fmt.Sprintf("docs/%s-%d.md", base, n)
		}
		taken[page] = true
		pages[i] = page
	}
	return pages
}

func renderIndex(input model.RenderInput, namespaces []model.Namespace, docPages []string) string {
	var sb strings.Builder
	project := input.Options.Project

	title := project.Name
	if title == "" {
		title = "API documentation"
	}
	if project.Version != "" {
		title += " " + project.Version
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if project.Description != "" {
		sb.WriteString(project.Description + "\n\n")
	}

	if len(input.Documents) > 0 {
		sb.WriteString("## Documents\n\n")
		for i, doc := range input.Documents {
			sb.WriteString(fmt.Sprintf("- [%s](%s)\n", doc.Title, docPages[i]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Namespaces\n\n")
	for _, ns := range namespaces {
		sb.WriteString(fmt.Sprintf("- [%s](%s)", ns.Name, namespacePage(ns.Name)))
		if summary := firstLine(ns.Doc); summary != "" {
			sb.WriteString(" - " + summary)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderNamespace(opts model.Options, ns model.Namespace) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", ns.Name))
	writeStatus(&sb, "", ns.Metadata)
	if ns.Doc != "" {
		sb.WriteString(ns.Doc + "\n\n")
	}

	publics := append([]model.Symbol(nil), ns.Publics...)
	sort.SliceStable(publics, func(i, j int) bool {
		return strings.ToLower(publics[i].Name) < strings.ToLower(publics[j].Name)
	})

	for _, sym := range publics {
		sb.WriteString(fmt.Sprintf("## %s\n\n", sym.Name))
		writeStatus(&sb, string(sym.Kind), sym.Metadata)

		if usage := usageLines(sym); len(usage) > 0 {
			sb.WriteString("```\n" + strings.Join(usage, "\n") + "\n```\n\n")
		}
		if sym.Doc != "" {
			sb.WriteString(sym.Doc + "\n\n")
		}

		for _, member := range sym.Members {
			sb.WriteString(fmt.Sprintf("- `%s`", member.Name))
			if usage := usageLines(member); len(usage) > 0 {
				sb.WriteString(" `" + strings.Join(usage, "`, `") + "`")
			}
			if member.Doc != "" {
				sb.WriteString(": " + firstLine(member.Doc))
			}
			sb.WriteString("\n")
		}
		if len(sym.Members) > 0 {
			sb.WriteString("\n")
		}

		uri, err := SourceURI(opts, sym)
		if err != nil {
			return "", err
		}
		if uri != "" {
			sb.WriteString(fmt.Sprintf("[source](%s)\n\n", uri))
		}
	}
	return sb.String(), nil
}

// writeStatus writes the kind, added and deprecated line, if any.
func writeStatus(sb *strings.Builder, kind string, meta model.Metadata) {
	var parts []string
	if kind != "" {
		parts = append(parts, "*"+kind+"*")
	}
	if meta.Added != "" {
		parts = append(parts, "added in "+meta.Added)
	}
	if meta.Deprecated != "" {
		if meta.Deprecated == "true" {
			parts = append(parts, "**deprecated**")
		} else {
			parts = append(parts, "**deprecated** in "+meta.Deprecated)
		}
	}
	if len(parts) > 0 {
		sb.WriteString(strings.Join(parts, " · ") + "\n\n")
	}
}

// usageLines renders how a symbol is used: one line per arglist, or the
// signature for non-callable symbols.
func usageLines(sym model.Symbol) []string {
	if len(sym.Arglists) > 0 {
		lines := make([]string, len(sym.Arglists))
		for i, args := range sym.Arglists {
			lines[i] = sym.Name + args
		}
		return lines
	}
	if sym.Signature != "" {
		return []string{sym.Name + ": " + sym.Signature}
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
