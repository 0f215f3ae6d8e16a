package pipeline

import (
	"strconv"

	"github.com/mvp-joe/docsmith/internal/model"
)

// Keys of the default-metadata map that address Metadata fields directly.
// Every other key is stored in Metadata.Extra.
const (
	MetaDoc        = "doc"
	MetaAdded      = "added"
	MetaDeprecated = "deprecated"
	MetaNoDoc      = "no-doc"
)

// mapSymbols applies fn to every symbol and, depth first, to every member
// below it. fn receives clones, so the input tree is never modified.
func mapSymbols(symbols []model.Symbol, fn func(model.Symbol) model.Symbol) []model.Symbol {
	if symbols == nil {
		return nil
	}
	out := make([]model.Symbol, len(symbols))
	for i, sym := range symbols {
		sym = sym.Clone()
		sym.Members = mapSymbols(sym.Members, fn)
		out[i] = fn(sym)
	}
	return out
}

// mapMetadata applies fn to the metadata of every namespace, symbol and
// member.
func mapMetadata(namespaces []model.Namespace, fn func(model.Metadata) model.Metadata) []model.Namespace {
	out := make([]model.Namespace, len(namespaces))
	for i, ns := range namespaces {
		ns.Metadata = fn(ns.Metadata.Clone())
		ns.Publics = mapSymbols(ns.Publics, func(sym model.Symbol) model.Symbol {
			sym.Metadata = fn(sym.Metadata)
			return sym
		})
		out[i] = ns
	}
	return out
}

// ApplyDefaults layers defaults beneath the metadata of every namespace,
// symbol and member. Values already present win, so applying the same
// defaults twice is the same as applying them once.
func ApplyDefaults(namespaces []model.Namespace, defaults map[string]string) []model.Namespace {
	if len(defaults) == 0 {
		return namespaces
	}
	return mapMetadata(namespaces, func(meta model.Metadata) model.Metadata {
		return overlay(meta, defaults)
	})
}

// overlay fills the unset fields of meta from defaults.
func overlay(meta model.Metadata, defaults map[string]string) model.Metadata {
	for key, value := range defaults {
		switch key {
		case MetaDoc:
			if meta.Doc == "" {
				meta.Doc = value
			}
		case MetaAdded:
			if meta.Added == "" {
				meta.Added = value
			}
		case MetaDeprecated:
			if meta.Deprecated == "" {
				meta.Deprecated = value
			}
		case MetaNoDoc:
			if noDoc, err := strconv.ParseBool(value); err == nil && noDoc {
				meta.NoDoc = true
			}
		default:
			if _, ok := meta.Extra[key]; ok {
				continue
			}
			if meta.Extra == nil {
				meta.Extra = make(map[string]string)
			}
			meta.Extra[key] = value
		}
	}
	return meta
}
