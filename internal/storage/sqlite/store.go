// Package sqlite implements storage.Store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"salesdb/internal/storage"
)

// Store implements storage.Store for SQLite.
//
// Key design points:
//   - Dates are stored as TEXT "YYYY-MM-DD" (the loader guarantees canonical
//     form), so BETWEEN works as plain string comparison.
//   - Idempotent inserts use INSERT OR IGNORE against the primary key.
type Store struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

// EnsureSchema creates the three tables and the orders indexes. All DDL is
// IF NOT EXISTS, keeping startup idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, t := range storage.Tables() {
		for _, stmt := range buildCreateSQL(t) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// Reset clears all three tables in one transaction, orders first so the FK
// references never dangle mid-transaction.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{storage.TableOrders, storage.TableProducts, storage.TableCustomers} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// maxInsertRows bounds rows per INSERT statement so a 10k-row batch with ten
// order columns stays under SQLite's bind-variable limit.
const maxInsertRows = 500

// ApplyBatch inserts one cleaned batch in a single transaction, dimension
// tables before orders. INSERT OR IGNORE makes re-application a no-op, and
// RowsAffected counts only rows actually inserted.
func (s *Store) ApplyBatch(ctx context.Context, b storage.Batch) (storage.BatchResult, error) {
	var res storage.BatchResult
	if b.Empty() {
		return res, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback() }()

	res.Customers, err = insertIgnore(ctx, tx, storage.TableCustomers,
		[]string{"customer_id", "customer_name", "customer_email", "customer_address"},
		customerRows(b.Customers))
	if err != nil {
		return res, fmt.Errorf("insert customers: %w", err)
	}

	res.Products, err = insertIgnore(ctx, tx, storage.TableProducts,
		[]string{"product_id", "product_name", "category"},
		productRows(b.Products))
	if err != nil {
		return res, fmt.Errorf("insert products: %w", err)
	}

	res.Orders, err = insertIgnore(ctx, tx, storage.TableOrders,
		[]string{"order_id", "product_id", "customer_id", "date_of_sale", "quantity_sold",
			"unit_price", "discount", "shipping_cost", "payment_method", "region"},
		orderRows(b.Orders))
	if err != nil {
		return res, fmt.Errorf("insert orders: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

func customerRows(cs []storage.Customer) [][]any {
	rows := make([][]any, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []any{c.ID, ptrVal(c.Name), ptrVal(c.Email), ptrVal(c.Address)})
	}
	return rows
}

func productRows(ps []storage.Product) [][]any {
	rows := make([][]any, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []any{p.ID, ptrVal(p.Name), ptrVal(p.Category)})
	}
	return rows
}

func orderRows(os []storage.Order) [][]any {
	rows := make([][]any, 0, len(os))
	for _, o := range os {
		rows = append(rows, []any{
			o.ID, o.ProductID, o.CustomerID, o.DateOfSale,
			ptrVal(o.QuantitySold), ptrVal(o.UnitPrice), ptrVal(o.Discount),
			ptrVal(o.ShippingCost), ptrVal(o.PaymentMethod), ptrVal(o.Region),
		})
	}
	return rows
}

// ptrVal converts a nullable pointer field to a driver value (nil -> NULL).
func ptrVal[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// insertIgnore performs chunked multi-row INSERT OR IGNORE and returns the
// number of rows actually inserted.
func insertIgnore(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	colList := make([]string, 0, len(columns))
	for _, c := range columns {
		colList = append(colList, sqlIdent(c))
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"
	prefix := "INSERT OR IGNORE INTO " + table + " (" + strings.Join(colList, ", ") + ") VALUES "

	var inserted int64
	for start := 0; start < len(rows); start += maxInsertRows {
		end := start + maxInsertRows
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(placeholders)
			args = append(args, row...)
		}

		res, err := tx.ExecContext(ctx, b.String(), args...)
		if err != nil {
			return inserted, err
		}
		n, _ := res.RowsAffected()
		inserted += n
	}
	return inserted, nil
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

var _ storage.Store = (*Store)(nil)
