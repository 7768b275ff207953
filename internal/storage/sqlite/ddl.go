package sqlite

import (
	"fmt"
	"strings"

	"salesdb/internal/storage"
)

// typeFor maps generic spec types to SQLite type names. SQLite affinity is
// forgiving; the names here mostly serve documentation.
func typeFor(generic string) string {
	switch strings.ToLower(generic) {
	case "integer":
		return "INTEGER"
	case "real":
		return "REAL"
	default:
		return "TEXT"
	}
}

// buildCreateSQL renders the CREATE TABLE and CREATE INDEX statements for one
// table spec.
//
// FK enforcement note: REFERENCES clauses are emitted but only enforced under
// PRAGMA foreign_keys=ON. The loader inserts referenced rows first within the
// same transaction either way.
func buildCreateSQL(t storage.TableSpec) []string {
	parts := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		col := sqlIdent(c.Name) + " " + typeFor(c.Type)
		if c.Name == t.PrimaryKey {
			col += " PRIMARY KEY"
		}
		if c.References != "" {
			col += " REFERENCES " + c.References
		}
		parts = append(parts, col)
	}

	stmts := []string{fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", t.Name, strings.Join(parts, ",\n  "),
	)}

	for _, ix := range t.Indexes {
		cols := make([]string, 0, len(ix.Columns))
		for _, c := range ix.Columns {
			cols = append(cols, sqlIdent(c))
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (%s);", ix.Name, t.Name, strings.Join(cols, ", "),
		))
	}
	return stmts
}
