package pipeline

import "github.com/mvp-joe/docsmith/internal/model"

// Filter keeps the namespaces whose name the selector matches. The All
// selector returns the input as is.
func Filter(namespaces []model.Namespace, selector model.Selector) []model.Namespace {
	if selector.IsAll() {
		return namespaces
	}
	out := make([]model.Namespace, 0, len(namespaces))
	for _, ns := range namespaces {
		if selector.Match(ns.Name) {
			out = append(out, ns)
		}
	}
	return out
}
