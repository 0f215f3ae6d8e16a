package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mvp-joe/docsmith/internal/model"
)

// JSONFile is the file the json writer produces under the output path.
const JSONFile = "docs.json"

// jsonSymbol is a symbol with its resolved source link.
type jsonSymbol struct {
	model.Symbol
	Members []jsonSymbol `json:"members,omitempty"`
	Source  string       `json:"source,omitempty"`
}

type jsonNamespace struct {
	model.Namespace
	Publics []jsonSymbol `json:"publics"`
}

// jsonOutput is the document written to JSONFile.
type jsonOutput struct {
	RunID      string           `json:"run_id"`
	Project    model.Project    `json:"project"`
	Namespaces []jsonNamespace  `json:"namespaces"`
	Documents  []model.Document `json:"documents"`
}

// jsonWriter dumps the whole model as a single JSON file.
type jsonWriter struct {
	logger *slog.Logger
}

// NewJSONWriter creates the json writer.
func NewJSONWriter(logger *slog.Logger) Writer {
	return &jsonWriter{logger: logger}
}

func (w *jsonWriter) Write(ctx context.Context, input model.RenderInput) error {
	output := jsonOutput{
		RunID:      input.RunID,
		Project:    input.Options.Project,
		Namespaces: []jsonNamespace{},
		Documents:  input.Documents,
	}
	if output.Documents == nil {
		output.Documents = []model.Document{}
	}

	for _, ns := range visible(input.Namespaces) {
		publics, err := toJSONSymbols(input.Options, ns.Publics)
		if err != nil {
			return err
		}
		output.Namespaces = append(output.Namespaces, jsonNamespace{Namespace: ns, Publics: publics})
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal docs: %w", err)
	}

	out, err := newAtomicWriter(input.Options.OutputPath)
	if err != nil {
		return err
	}
	defer out.close()

	if err := out.writeFile(JSONFile, data); err != nil {
		return err
	}

	w.logger.Info("wrote json docs", "output", input.Options.OutputPath, "namespaces", len(output.Namespaces))
	return nil
}

func toJSONSymbols(opts model.Options, symbols []model.Symbol) ([]jsonSymbol, error) {
	out := make([]jsonSymbol, 0, len(symbols))
	for _, sym := range symbols {
		members, err := toJSONSymbols(opts, sym.Members)
		if err != nil {
			return nil, err
		}
		uri, err := SourceURI(opts, sym)
		if err != nil {
			return nil, err
		}
		out = append(out, jsonSymbol{Symbol: sym, Members: members, Source: uri})
	}
	return out, nil
}
