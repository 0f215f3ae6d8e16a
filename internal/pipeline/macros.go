package pipeline

import "github.com/mvp-joe/docsmith/internal/model"

// ExtractMacros narrows the output of a macro pass to macro-kind publics.
// Namespaces left without publics are dropped.
func ExtractMacros(namespaces []model.Namespace) []model.Namespace {
	out := make([]model.Namespace, 0, len(namespaces))
	for _, ns := range namespaces {
		var macros []model.Symbol
		for _, sym := range ns.Publics {
			if sym.Kind == model.KindMacro {
				macros = append(macros, sym.Clone())
			}
		}
		if len(macros) == 0 {
			continue
		}
		ns = ns.Clone()
		ns.Publics = macros
		out = append(out, ns)
	}
	return out
}
