package model

// Kind classifies a documented public binding.
type Kind string

const (
	KindValue    Kind = "value"
	KindFunction Kind = "function"
	KindMacro    Kind = "macro"
	KindType     Kind = "type"
	KindTrait    Kind = "trait"
)

// Metadata holds the overridable documentation surface shared by namespaces
// and symbols. Defaults are layered onto it by the pipeline.
type Metadata struct {
	Doc        string            `json:"doc,omitempty"`
	Added      string            `json:"added,omitempty"`
	Deprecated string            `json:"deprecated,omitempty"`
	NoDoc      bool              `json:"no_doc,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Clone returns a copy that shares no mutable state with m.
func (m Metadata) Clone() Metadata {
	if m.Extra != nil {
		extra := make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			extra[k] = v
		}
		m.Extra = extra
	}
	return m
}

// Namespace is a named grouping of public symbols from one source module.
type Namespace struct {
	Name string `json:"name"`
	Metadata
	Publics []Symbol `json:"publics"`
}

// Symbol is a documented public binding.
type Symbol struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Arglists []string `json:"arglists,omitempty"`
	Members  []Symbol `json:"members,omitempty"`
	Metadata

	// Signature describes non-callable symbols: a field or constant type,
	// an alias target, or the kind of aggregate.
	Signature string `json:"signature,omitempty"`

	// File is relative to the reader's source root until provenance is
	// annotated, and relative to the root path afterwards. Empty when the
	// originating file could not be located.
	File string `json:"file,omitempty"`
	Path string `json:"-"`
	Line int    `json:"line,omitempty"`
}

// Clone returns a deep copy of the symbol, members included.
func (s Symbol) Clone() Symbol {
	s.Metadata = s.Metadata.Clone()
	if s.Arglists != nil {
		s.Arglists = append([]string(nil), s.Arglists...)
	}
	if s.Members != nil {
		members := make([]Symbol, len(s.Members))
		for i, m := range s.Members {
			members[i] = m.Clone()
		}
		s.Members = members
	}
	return s
}

// Clone returns a deep copy of the namespace.
func (n Namespace) Clone() Namespace {
	n.Metadata = n.Metadata.Clone()
	if n.Publics != nil {
		publics := make([]Symbol, len(n.Publics))
		for i, s := range n.Publics {
			publics[i] = s.Clone()
		}
		n.Publics = publics
	}
	return n
}

// QualifiedName returns the namespace/symbol form used in logs and anchors.
func QualifiedName(ns, sym string) string {
	return ns + "/" + sym
}

// Document is a free-form documentation page.
type Document struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Format  string `json:"format"`
	Content string `json:"content"`
	File    string `json:"file"`
}

// RenderInput is everything a writer receives for one run.
type RenderInput struct {
	RunID      string      `json:"run_id"`
	Options    Options     `json:"-"`
	Namespaces []Namespace `json:"namespaces"`
	Documents  []Document  `json:"documents"`
}
