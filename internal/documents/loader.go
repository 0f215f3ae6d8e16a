// Package documents loads free-form documentation pages that accompany the
// extracted API model.
package documents

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gobwas/glob"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/mvp-joe/docsmith/internal/model"
)

// FormatMarkdown is the format of every loaded document. HTML pages are
// converted on load.
const FormatMarkdown = "markdown"

// DocumentPatterns are the files picked up when scanning a directory.
var DocumentPatterns = []string{"**/*.md", "**/*.markdown", "**/*.html", "**/*.htm"}

// Extensions are the file extensions DocumentPatterns match.
var Extensions = []string{".md", ".markdown", ".html", ".htm"}

// Loader reads documents from disk.
type Loader struct {
	logger   *slog.Logger
	conv     *converter.Converter
	patterns []glob.Glob
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	patterns := make([]glob.Glob, 0, len(DocumentPatterns))
	for _, p := range DocumentPatterns {
		patterns = append(patterns, glob.MustCompile(p, '/'))
	}

	return &Loader{logger: logger, conv: conv, patterns: patterns}
}

// Load returns the documents selected by files. An explicit list is loaded
// in the given order. The All selection scans docPaths and sorts the
// result by document name; with no directories it yields nothing.
// Relative paths are resolved against rootPath.
func (l *Loader) Load(rootPath string, docPaths []string, files model.DocFiles) ([]model.Document, error) {
	if !files.IsAll() {
		docs := make([]model.Document, 0, len(files.Files()))
		for _, file := range files.Files() {
			doc, err := l.LoadFile(resolve(rootPath, file))
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
		return docs, nil
	}

	var docs []model.Document
	for _, dir := range docPaths {
		found, err := l.discover(resolve(rootPath, dir))
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			doc, err := l.LoadFile(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Name < docs[j].Name
	})
	return docs, nil
}

// LoadFile reads one document. HTML is converted to markdown.
func (l *Loader) LoadFile(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, &model.SourceReadError{Path: path, Err: err}
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	doc := model.Document{
		Name:   strings.TrimSuffix(base, ext),
		Format: FormatMarkdown,
		File:   path,
	}

	switch strings.ToLower(ext) {
	case ".html", ".htm":
		title, content, err := l.convertHTML(string(data))
		if err != nil {
			return model.Document{}, &model.SourceReadError{Path: path, Err: err}
		}
		doc.Title = title
		doc.Content = content
	default:
		doc.Content = string(data)
		doc.Title = markdownTitle(doc.Content)
	}

	if doc.Title == "" {
		doc.Title = doc.Name
	}
	l.logger.Debug("loaded document", "name", doc.Name, "file", path)
	return doc, nil
}

// discover walks dir for document files in lexical order.
func (l *Loader) discover(dir string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("document directory not found", "dir", dir)
		return nil, nil
	}

	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if l.matches(filepath.ToSlash(rel)) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, &model.SourceReadError{Path: dir, Err: err}
	}
	return found, nil
}

func (l *Loader) matches(rel string) bool {
	// "**/*.md" needs a directory separator; match root files by base name.
	candidates := []string{rel}
	if !strings.Contains(rel, "/") {
		candidates = append(candidates, "./"+rel)
	}
	for _, g := range l.patterns {
		for _, c := range candidates {
			if g.Match(c) {
				return true
			}
		}
	}
	return false
}

// convertHTML extracts the page title and converts the body to markdown.
func (l *Loader) convertHTML(html string) (string, string, error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(page.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(page.Find("h1").First().Text())
	}

	content, err := l.conv.ConvertString(html)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return title, content, nil
}

// markdownTitle returns the text of the first level-one heading.
func markdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

func resolve(rootPath, path string) string {
	if filepath.IsAbs(path) || rootPath == "" {
		return path
	}
	return filepath.Join(rootPath, path)
}
