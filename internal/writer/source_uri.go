package writer

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/mvp-joe/docsmith/internal/model"
)

// Placeholders recognized in a source URI template.
const (
	placeholderFilepath  = "{filepath}"
	placeholderBasename  = "{basename}"
	placeholderLine      = "{line}"
	placeholderGitCommit = "{git-commit}"
)

// SourceURI builds the link to a symbol's definition. Without a
// {filepath} placeholder the file is appended to the URI and, when a line
// anchor prefix is configured, "#<prefix><line>" follows. The repository
// commit is only looked up when the URI asks for it.
//
// Symbols without provenance, and runs without a source URI, get "".
func SourceURI(opts model.Options, sym model.Symbol) (string, error) {
	if opts.SourceURI == "" || sym.File == "" {
		return "", nil
	}

	uri := opts.SourceURI
	if strings.Contains(uri, placeholderGitCommit) {
		commit, err := opts.Commit()
		if err != nil {
			return "", fmt.Errorf("failed to resolve source link for %s: %w", sym.Name, err)
		}
		uri = strings.ReplaceAll(uri, placeholderGitCommit, commit)
	}

	if !strings.Contains(uri, placeholderFilepath) {
		uri += sym.File
		if opts.LineAnchorPrefix != "" && sym.Line > 0 {
			uri += "#" + opts.LineAnchorPrefix + strconv.Itoa(sym.Line)
		}
		return uri, nil
	}

	replacer := strings.NewReplacer(
		placeholderFilepath, sym.File,
		placeholderBasename, path.Base(sym.File),
		placeholderLine, strconv.Itoa(sym.Line),
	)
	return replacer.Replace(uri), nil
}
