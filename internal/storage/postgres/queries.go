package postgres

import (
	"context"
	"fmt"

	"salesdb/internal/storage"
)

// Dates are stored as text "YYYY-MM-DD", so range predicates and period
// bucketing are plain string operations, identical in spirit to the SQLite
// backend.
const revenueExpr = "(o.unit_price * o.quantity_sold * (1 - o.discount) + o.shipping_cost)"

func (s *Store) TotalRevenue(ctx context.Context, start, end string) (float64, error) {
	const q = `
SELECT COALESCE(SUM(` + revenueExpr + `), 0)::double precision
FROM orders o
WHERE o.date_of_sale BETWEEN $1 AND $2`

	var total float64
	if err := s.pool.QueryRow(ctx, q, start, end).Scan(&total); err != nil {
		return 0, fmt.Errorf("total revenue: %w", err)
	}
	return total, nil
}

func (s *Store) RevenueByProduct(ctx context.Context, start, end string, limit int) ([]storage.ProductRevenue, error) {
	q := `
SELECT
  p.product_id,
  COALESCE(p.product_name, ''),
  COALESCE(SUM(` + revenueExpr + `), 0)::double precision AS revenue,
  COALESCE(SUM(o.quantity_sold), 0)::bigint,
  COUNT(o.order_id)
FROM orders o
JOIN products p ON o.product_id = p.product_id
WHERE o.date_of_sale BETWEEN $1 AND $2
GROUP BY p.product_id, p.product_name
ORDER BY revenue DESC`
	args := []any{start, end}
	if limit > 0 {
		q += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("revenue by product: %w", err)
	}
	defer rows.Close()

	var out []storage.ProductRevenue
	for rows.Next() {
		var r storage.ProductRevenue
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Revenue, &r.Quantity, &r.Orders); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RevenueByCategory(ctx context.Context, start, end string, limit int) ([]storage.CategoryRevenue, error) {
	q := `
SELECT
  COALESCE(p.category, ''),
  COALESCE(SUM(` + revenueExpr + `), 0)::double precision AS revenue,
  COALESCE(SUM(o.quantity_sold), 0)::bigint,
  COUNT(DISTINCT p.product_id),
  COUNT(o.order_id)
FROM orders o
JOIN products p ON o.product_id = p.product_id
WHERE o.date_of_sale BETWEEN $1 AND $2
GROUP BY p.category
ORDER BY revenue DESC`
	args := []any{start, end}
	if limit > 0 {
		q += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("revenue by category: %w", err)
	}
	defer rows.Close()

	var out []storage.CategoryRevenue
	for rows.Next() {
		var r storage.CategoryRevenue
		if err := rows.Scan(&r.Category, &r.Revenue, &r.Quantity, &r.Products, &r.Orders); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RevenueByRegion(ctx context.Context, start, end string, limit int) ([]storage.RegionRevenue, error) {
	q := `
SELECT
  COALESCE(o.region, ''),
  COALESCE(SUM(` + revenueExpr + `), 0)::double precision AS revenue,
  COALESCE(SUM(o.quantity_sold), 0)::bigint,
  COUNT(DISTINCT o.customer_id),
  COUNT(o.order_id)
FROM orders o
WHERE o.date_of_sale BETWEEN $1 AND $2
GROUP BY o.region
ORDER BY revenue DESC`
	args := []any{start, end}
	if limit > 0 {
		q += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("revenue by region: %w", err)
	}
	defer rows.Close()

	var out []storage.RegionRevenue
	for rows.Next() {
		var r storage.RegionRevenue
		if err := rows.Scan(&r.Region, &r.Revenue, &r.Quantity, &r.Customers, &r.Orders); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func bucketExpr(p storage.Period) (string, error) {
	switch p {
	case storage.PeriodMonthly:
		return "substr(o.date_of_sale, 1, 7)", nil
	case storage.PeriodYearly:
		return "substr(o.date_of_sale, 1, 4)", nil
	case storage.PeriodQuarterly:
		return "substr(o.date_of_sale, 1, 4) || '-Q' || ((substr(o.date_of_sale, 6, 2)::int + 2) / 3)", nil
	default:
		return "", fmt.Errorf("unsupported period %q", p)
	}
}

func (s *Store) RevenueTrends(ctx context.Context, start, end string, period storage.Period) ([]storage.TrendPoint, error) {
	expr, err := bucketExpr(period)
	if err != nil {
		return nil, err
	}

	q := `
SELECT
  ` + expr + ` AS period,
  COALESCE(SUM(` + revenueExpr + `), 0)::double precision,
  COALESCE(SUM(o.quantity_sold), 0)::bigint,
  COUNT(o.order_id)
FROM orders o
WHERE o.date_of_sale BETWEEN $1 AND $2
GROUP BY period
ORDER BY period`

	rows, err := s.pool.Query(ctx, q, start, end)
	if err != nil {
		return nil, fmt.Errorf("revenue trends: %w", err)
	}
	defer rows.Close()

	var out []storage.TrendPoint
	for rows.Next() {
		var p storage.TrendPoint
		if err := rows.Scan(&p.Period, &p.Revenue, &p.Quantity, &p.Orders); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
