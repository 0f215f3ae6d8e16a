package pipeline

import "github.com/mvp-joe/docsmith/internal/model"

// Merge combines records that share a namespace name. The first record of
// each name keeps its own fields; its publics become the concatenation of
// every record's publics in encounter order. Same-named symbols are kept.
//
// Namespaces come out in order of first appearance.
func Merge(namespaces []model.Namespace) []model.Namespace {
	index := make(map[string]int, len(namespaces))
	out := make([]model.Namespace, 0, len(namespaces))

	for _, ns := range namespaces {
		i, seen := index[ns.Name]
		if !seen {
			index[ns.Name] = len(out)
			base := ns.Clone()
			if base.Publics == nil {
				base.Publics = []model.Symbol{}
			}
			out = append(out, base)
			continue
		}
		for _, sym := range ns.Publics {
			out[i].Publics = append(out[i].Publics, sym.Clone())
		}
	}
	return out
}
