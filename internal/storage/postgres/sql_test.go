package postgres

import (
	"strings"
	"testing"

	"salesdb/internal/storage"
)

func TestBuildInsertSQL_PlaceholdersAndConflict(t *testing.T) {
	t.Parallel()

	rows := [][]any{
		{"C1", "Ada"},
		{"C2", "Grace"},
	}
	sql, args := buildInsertSQL("customers", "customer_id",
		[]string{"customer_id", "customer_name"}, rows)

	want := `INSERT INTO customers ("customer_id", "customer_name") VALUES ` +
		`($1, $2), ($3, $4) ON CONFLICT ("customer_id") DO NOTHING`
	if sql != want {
		t.Fatalf("sql mismatch:\n got: %s\nwant: %s", sql, want)
	}

	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[0] != "C1" || args[3] != "Grace" {
		t.Fatalf("args out of order: %v", args)
	}
}

func TestBuildInsertSQL_SingleRow(t *testing.T) {
	t.Parallel()

	sql, args := buildInsertSQL("products", "product_id",
		[]string{"product_id"}, [][]any{{"P1"}})
	if !strings.HasSuffix(sql, `ON CONFLICT ("product_id") DO NOTHING`) {
		t.Fatalf("missing conflict clause: %s", sql)
	}
	if !strings.Contains(sql, "($1)") {
		t.Fatalf("single-row placeholder wrong: %s", sql)
	}
	if len(args) != 1 {
		t.Fatalf("args: %v", args)
	}
}

func TestBuildCreateSQL_OrdersTable(t *testing.T) {
	t.Parallel()

	var orders storage.TableSpec
	for _, ts := range storage.Tables() {
		if ts.Name == storage.TableOrders {
			orders = ts
		}
	}
	if orders.Name == "" {
		t.Fatal("orders spec missing")
	}

	stmts := buildCreateSQL(orders)
	if len(stmts) != 1+len(orders.Indexes) {
		t.Fatalf("expected create + %d indexes, got %d statements", len(orders.Indexes), len(stmts))
	}

	create := stmts[0]
	if !strings.HasPrefix(create, "CREATE TABLE IF NOT EXISTS orders") {
		t.Fatalf("create statement: %s", create)
	}
	if !strings.Contains(create, `"order_id" text PRIMARY KEY`) {
		t.Fatalf("primary key missing: %s", create)
	}
	if !strings.Contains(create, `"quantity_sold" bigint`) {
		t.Fatalf("integer mapping wrong: %s", create)
	}
	if !strings.Contains(create, `"unit_price" double precision`) {
		t.Fatalf("real mapping wrong: %s", create)
	}
	if !strings.Contains(create, "REFERENCES products(product_id)") {
		t.Fatalf("foreign key missing: %s", create)
	}

	for _, ix := range stmts[1:] {
		if !strings.HasPrefix(ix, "CREATE INDEX IF NOT EXISTS idx_orders_") {
			t.Fatalf("index statement: %s", ix)
		}
	}
}
