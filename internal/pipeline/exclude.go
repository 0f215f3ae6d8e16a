package pipeline

import (
	"log/slog"
	"regexp"

	"github.com/mvp-joe/docsmith/internal/model"
)

// Exclude removes the publics of ns whose name contains a match of pattern
// and logs one line per removed symbol. A nil pattern excludes nothing.
func Exclude(logger *slog.Logger, ns model.Namespace, pattern *regexp.Regexp) model.Namespace {
	if pattern == nil {
		return ns
	}

	kept := make([]model.Symbol, 0, len(ns.Publics))
	for _, sym := range ns.Publics {
		if pattern.MatchString(sym.Name) {
			logger.Info("excluding var", "var", model.QualifiedName(ns.Name, sym.Name))
			continue
		}
		kept = append(kept, sym)
	}

	ns.Publics = kept
	return ns
}
