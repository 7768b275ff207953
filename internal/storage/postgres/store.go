// Package postgres implements storage.Store on jackc/pgx/v5.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdb/internal/storage"
)

// Store implements storage.Store for Postgres.
//
// Idempotent inserts rely on INSERT ... ON CONFLICT (<pk>) DO NOTHING; the
// command tag then counts only rows actually inserted, which is exactly what
// BatchResult wants.
type Store struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, t := range storage.Tables() {
		for _, stmt := range buildCreateSQL(t) {
			if _, err := s.pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range []string{storage.TableOrders, storage.TableProducts, storage.TableCustomers} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}

// maxInsertRows bounds rows per statement; ten order columns times 1000 rows
// stays well under the 65535 bind-parameter ceiling.
const maxInsertRows = 1000

func (s *Store) ApplyBatch(ctx context.Context, b storage.Batch) (storage.BatchResult, error) {
	var res storage.BatchResult
	if b.Empty() {
		return res, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res.Customers, err = insertAbsent(ctx, tx, storage.TableCustomers, "customer_id",
		[]string{"customer_id", "customer_name", "customer_email", "customer_address"},
		customerRows(b.Customers))
	if err != nil {
		return res, fmt.Errorf("insert customers: %w", err)
	}

	res.Products, err = insertAbsent(ctx, tx, storage.TableProducts, "product_id",
		[]string{"product_id", "product_name", "category"},
		productRows(b.Products))
	if err != nil {
		return res, fmt.Errorf("insert products: %w", err)
	}

	res.Orders, err = insertAbsent(ctx, tx, storage.TableOrders, "order_id",
		[]string{"order_id", "product_id", "customer_id", "date_of_sale", "quantity_sold",
			"unit_price", "discount", "shipping_cost", "payment_method", "region"},
		orderRows(b.Orders))
	if err != nil {
		return res, fmt.Errorf("insert orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func insertAbsent(ctx context.Context, tx pgx.Tx, table, pk string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var inserted int64
	for start := 0; start < len(rows); start += maxInsertRows {
		end := start + maxInsertRows
		if end > len(rows) {
			end = len(rows)
		}
		q, args := buildInsertSQL(table, pk, columns, rows[start:end])
		tag, err := tx.Exec(ctx, q, args...)
		if err != nil {
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
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

func ptrVal[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

var _ storage.Store = (*Store)(nil)
