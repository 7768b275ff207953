// Package mssql implements storage.Store on Microsoft SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"salesdb/internal/storage"
)

// Store implements storage.Store for SQL Server.
//
// SQL Server has no INSERT .. ON CONFLICT, so idempotent inserts use a
// NOT EXISTS guard per row. Inserts run inside the batch transaction, so the
// per-row round trips still commit as one unit.
type Store struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}

	// Conservative defaults for bursty batch loads.
	db.SetMaxOpenConns(64)
	db.SetMaxIdleConns(64)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

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

	custSQL := buildInsertAbsentSQL(storage.TableCustomers, "customer_id",
		[]string{"customer_id", "customer_name", "customer_email", "customer_address"})
	for _, c := range b.Customers {
		n, err := execRow(ctx, tx, custSQL, c.ID, ptrVal(c.Name), ptrVal(c.Email), ptrVal(c.Address))
		if err != nil {
			return res, fmt.Errorf("insert customer %s: %w", c.ID, err)
		}
		res.Customers += n
	}

	prodSQL := buildInsertAbsentSQL(storage.TableProducts, "product_id",
		[]string{"product_id", "product_name", "category"})
	for _, p := range b.Products {
		n, err := execRow(ctx, tx, prodSQL, p.ID, ptrVal(p.Name), ptrVal(p.Category))
		if err != nil {
			return res, fmt.Errorf("insert product %s: %w", p.ID, err)
		}
		res.Products += n
	}

	orderSQL := buildInsertAbsentSQL(storage.TableOrders, "order_id",
		[]string{"order_id", "product_id", "customer_id", "date_of_sale", "quantity_sold",
			"unit_price", "discount", "shipping_cost", "payment_method", "region"})
	for _, o := range b.Orders {
		n, err := execRow(ctx, tx, orderSQL,
			o.ID, o.ProductID, o.CustomerID, o.DateOfSale,
			ptrVal(o.QuantitySold), ptrVal(o.UnitPrice), ptrVal(o.Discount),
			ptrVal(o.ShippingCost), ptrVal(o.PaymentMethod), ptrVal(o.Region))
		if err != nil {
			return res, fmt.Errorf("insert order %s: %w", o.ID, err)
		}
		res.Orders += n
	}

	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

func execRow(ctx context.Context, tx *sql.Tx, q string, args ...any) (int64, error) {
	r, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, _ := r.RowsAffected()
	return n, nil
}

func ptrVal[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

var _ storage.Store = (*Store)(nil)
