package writer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/mvp-joe/docsmith/internal/model"
)

// BleveDir is the index directory the bleve writer produces under the output path.
const BleveDir = "docs.bleve"

// Document types stored in the search index.
const (
	entrySymbol   = "symbol"
	entryDocument = "document"
)

// searchEntry is one indexed record.
type searchEntry struct {
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Kind      string `json:"kind,omitempty"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Source    string `json:"source,omitempty"`
}

// bleveWriter builds an on-disk full-text index over symbols and documents.
type bleveWriter struct {
	logger *slog.Logger
}

// NewBleveWriter creates the bleve writer.
func NewBleveWriter(logger *slog.Logger) Writer {
	return &bleveWriter{logger: logger}
}

func (w *bleveWriter) Write(ctx context.Context, input model.RenderInput) error {
	if err := os.MkdirAll(input.Options.OutputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	indexPath := filepath.Join(input.Options.OutputPath, BleveDir)
	if err := os.RemoveAll(indexPath); err != nil {
		return fmt.Errorf("failed to remove previous index: %w", err)
	}

	index, err := bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}
	defer index.Close()

	const batchSize = 1000
	batch := index.NewBatch()
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute batch: %w", err)
		}
		batch.Reset()
		return nil
	}

	seen := make(map[string]int)
	add := func(id string, entry searchEntry) error {
		// Merged namespaces may hold same-named symbols.
		if n := seen[id]; n > 0 {
			seen[id] = n + 1
			id += "~" + strconv.Itoa(n)
		} else {
			seen[id] = 1
		}
		if err := batch.Index(id, entry); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", id, err)
		}
		if batch.Size() >= batchSize {
			return flush()
		}
		return nil
	}

	count := 0
	for _, ns := range visible(input.Namespaces) {
		if err := add(ns.Name, searchEntry{Type: entrySymbol, Name: ns.Name, Kind: "namespace", Text: ns.Doc}); err != nil {
			return err
		}
		count++

		var walk func(prefix string, symbols []model.Symbol) error
		walk = func(prefix string, symbols []model.Symbol) error {
			for _, sym := range symbols {
				uri, err := SourceURI(input.Options, sym)
				if err != nil {
					return err
				}
				qualified := model.QualifiedName(prefix, sym.Name)
				entry := searchEntry{
					Type:      entrySymbol,
					Namespace: ns.Name,
					Name:      sym.Name,
					Kind:      string(sym.Kind),
					Text:      sym.Doc,
					File:      sym.File,
					Line:      sym.Line,
					Source:    uri,
				}
				if err := add(qualified, entry); err != nil {
					return err
				}
				count++
				if err := walk(qualified, sym.Members); err != nil {
					return err
				}
			}
			return nil
		}
		if err := walk(ns.Name, ns.Publics); err != nil {
			return err
		}
	}

	for _, doc := range input.Documents {
		entry := searchEntry{
			Type:  entryDocument,
			Name:  doc.Name,
			Title: doc.Title,
			Text:  doc.Content,
			File:  doc.File,
		}
		if err := add("doc:"+doc.Name, entry); err != nil {
			return err
		}
		count++
	}

	if err := flush(); err != nil {
		return err
	}

	w.logger.Info("wrote search index", "index", indexPath, "entries", count)
	return nil
}

// buildIndexMapping indexes names and text with the standard analyzer and
// keeps type and kind as exact-match keywords.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true
	textMapping.IncludeTermVectors = true

	keywordMapping := bleve.NewTextFieldMapping()
	keywordMapping.Analyzer = "keyword"
	keywordMapping.Store = true

	storedOnly := bleve.NewTextFieldMapping()
	storedOnly.Store = true
	storedOnly.Index = false

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("type", keywordMapping)
	docMapping.AddFieldMappingsAt("kind", keywordMapping)
	docMapping.AddFieldMappingsAt("namespace", keywordMapping)
	docMapping.AddFieldMappingsAt("name", textMapping)
	docMapping.AddFieldMappingsAt("title", textMapping)
	docMapping.AddFieldMappingsAt("text", textMapping)
	docMapping.AddFieldMappingsAt("file", storedOnly)
	docMapping.AddFieldMappingsAt("source", storedOnly)
	docMapping.AddFieldMappingsAt("line", lineMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
