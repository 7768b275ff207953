package mssql

import (
	"fmt"
	"strconv"
	"strings"

	"salesdb/internal/storage"
)

func typeFor(generic string) string {
	switch strings.ToLower(generic) {
	case "integer":
		return "BIGINT"
	case "real":
		return "FLOAT"
	default:
		// Keys and labels; bounded so the PK stays indexable.
		return "NVARCHAR(255)"
	}
}

// buildCreateSQL renders guarded CREATE TABLE / CREATE INDEX statements.
// SQL Server has no CREATE ... IF NOT EXISTS, so each statement carries its
// own existence check.
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
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (\n  %s\n);",
		t.Name, t.Name, strings.Join(parts, ",\n  "),
	)}

	for _, ix := range t.Indexes {
		cols := make([]string, 0, len(ix.Columns))
		for _, c := range ix.Columns {
			cols = append(cols, sqlIdent(c))
		}
		stmts = append(stmts, fmt.Sprintf(
			"IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s' AND object_id = OBJECT_ID(N'%s')) CREATE INDEX %s ON %s (%s);",
			ix.Name, t.Name, ix.Name, t.Name, strings.Join(cols, ", "),
		))
	}
	return stmts
}

// buildInsertAbsentSQL renders a single-row idempotent insert:
//
//	INSERT INTO t (c1, c2)
//	SELECT @p1, @p2
//	WHERE NOT EXISTS (SELECT 1 FROM t WHERE pk = @p1)
//
// The primary key must be the first column.
func buildInsertAbsentSQL(table, pk string, columns []string) string {
	colList := make([]string, 0, len(columns))
	params := make([]string, 0, len(columns))
	for i, c := range columns {
		colList = append(colList, sqlIdent(c))
		params = append(params, "@p"+strconv.Itoa(i+1))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s = @p1)",
		table, strings.Join(colList, ", "), strings.Join(params, ", "), table, sqlIdent(pk),
	)
}

func sqlIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
