package writer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/docsmith/internal/model"
)

// SQLiteFile is the database the sqlite writer produces under the output path.
const SQLiteFile = "docs.db"

const createRunsTable = `
CREATE TABLE runs (
	run_id TEXT PRIMARY KEY,
	project TEXT NOT NULL,
	version TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

const createNamespacesTable = `
CREATE TABLE namespaces (
	namespace_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	name TEXT NOT NULL,
	doc TEXT NOT NULL,
	added TEXT,
	deprecated TEXT,
	position INTEGER NOT NULL
)`

const createSymbolsTable = `
CREATE TABLE symbols (
	symbol_id TEXT PRIMARY KEY,
	namespace_id TEXT NOT NULL REFERENCES namespaces(namespace_id),
	parent_id TEXT REFERENCES symbols(symbol_id),
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	arglists TEXT,
	signature TEXT,
	doc TEXT NOT NULL,
	added TEXT,
	deprecated TEXT,
	file_path TEXT,
	line INTEGER,
	source_uri TEXT,
	position INTEGER NOT NULL
)`

const createDocumentsTable = `
CREATE TABLE documents (
	document_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	name TEXT NOT NULL,
	title TEXT NOT NULL,
	format TEXT NOT NULL,
	content TEXT NOT NULL,
	file_path TEXT NOT NULL,
	position INTEGER NOT NULL
)`

// sqliteWriter stores the model in a fresh SQLite database.
type sqliteWriter struct {
	logger *slog.Logger
}

// NewSQLiteWriter creates the sqlite writer.
func NewSQLiteWriter(logger *slog.Logger) Writer {
	return &sqliteWriter{logger: logger}
}

func (w *sqliteWriter) Write(ctx context.Context, input model.RenderInput) error {
	if err := os.MkdirAll(input.Options.OutputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	dbPath := filepath.Join(input.Options.OutputPath, SQLiteFile)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous database: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := createSchema(db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	project := input.Options.Project
	_, err = sq.Insert("runs").
		Columns("run_id", "project", "version", "description", "created_at").
		Values(input.RunID, project.Name, project.Version, project.Description, time.Now().UTC().Format(time.RFC3339)).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	namespaces := visible(input.Namespaces)
	for i, ns := range namespaces {
		nsID := uuid.New().String()
		_, err := sq.Insert("namespaces").
			Columns("namespace_id", "run_id", "name", "doc", "added", "deprecated", "position").
			Values(nsID, input.RunID, ns.Name, ns.Doc, nullableString(ns.Added), nullableString(ns.Deprecated), i).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert namespace %s: %w", ns.Name, err)
		}
		if err := insertSymbols(tx, input.Options, nsID, nil, ns.Publics); err != nil {
			return fmt.Errorf("failed to insert symbols of %s: %w", ns.Name, err)
		}
	}

	for i, doc := range input.Documents {
		_, err := sq.Insert("documents").
			Columns("document_id", "run_id", "name", "title", "format", "content", "file_path", "position").
			Values(uuid.New().String(), input.RunID, doc.Name, doc.Title, doc.Format, doc.Content, doc.File, i).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert document %s: %w", doc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("wrote sqlite docs", "database", dbPath, "namespaces", len(namespaces))
	return nil
}

// createSchema creates every table in one transaction.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"namespaces", createNamespacesTable},
		{"symbols", createSymbolsTable},
		{"documents", createDocumentsTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

func insertSymbols(tx *sql.Tx, opts model.Options, nsID string, parentID *string, symbols []model.Symbol) error {
	for i, sym := range symbols {
		uri, err := SourceURI(opts, sym)
		if err != nil {
			return err
		}

		symID := uuid.New().String()
		_, err = sq.Insert("symbols").
			Columns("symbol_id", "namespace_id", "parent_id", "name", "kind", "arglists", "signature",
				"doc", "added", "deprecated", "file_path", "line", "source_uri", "position").
			Values(
				symID,
				nsID,
				parentID,
				sym.Name,
				string(sym.Kind),
				nullableString(strings.Join(sym.Arglists, "\n")),
				nullableString(sym.Signature),
				sym.Doc,
				nullableString(sym.Added),
				nullableString(sym.Deprecated),
				nullableString(sym.File),
				nullableInt(sym.Line),
				nullableString(uri),
				i,
			).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.Name, err)
		}

		if err := insertSymbols(tx, opts, nsID, &symID, sym.Members); err != nil {
			return err
		}
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
