// Package model defines the documentation model shared by readers, the
// extraction pipeline and writers: namespaces, symbols, documents, the
// immutable run options and the typed errors a run can fail with.
package model
