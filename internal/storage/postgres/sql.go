package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"salesdb/internal/storage"
)

func typeFor(generic string) string {
	switch strings.ToLower(generic) {
	case "integer":
		return "bigint"
	case "real":
		return "double precision"
	default:
		return "text"
	}
}

// buildCreateSQL renders CREATE TABLE / CREATE INDEX statements for one spec.
// All statements are IF NOT EXISTS.
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

// buildInsertSQL renders a multi-row idempotent insert:
//
//	INSERT INTO t (c1, c2) VALUES ($1, $2), ($3, $4)
//	ON CONFLICT (pk) DO NOTHING
func buildInsertSQL(table, pk string, columns []string, rows [][]any) (string, []any) {
	colList := make([]string, 0, len(columns))
	for _, c := range columns {
		colList = append(colList, sqlIdent(c))
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(colList, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			n++
			args = append(args, row[j])
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (")
	b.WriteString(sqlIdent(pk))
	b.WriteString(") DO NOTHING")

	return b.String(), args
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
