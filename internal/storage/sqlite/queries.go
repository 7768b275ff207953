package sqlite

import (
	"context"
	"fmt"

	"salesdb/internal/storage"
)

// revenueExpr is the derived revenue for one order row. Revenue is never
// stored; orders with a NULL price/quantity/discount/shipping contribute
// nothing to SUM (NULL arithmetic), matching the relational semantics the
// rest of the system assumes.
const revenueExpr = "(o.unit_price * o.quantity_sold * (1 - o.discount) + o.shipping_cost)"

func (s *Store) TotalRevenue(ctx context.Context, start, end string) (float64, error) {
	const q = `
SELECT COALESCE(SUM(` + revenueExpr + `), 0)
FROM orders o
WHERE o.date_of_sale BETWEEN ? AND ?`

	var total float64
	if err := s.db.QueryRowContext(ctx, q, start, end).Scan(&total); err != nil {
		return 0, fmt.Errorf("total revenue: %w", err)
	}
	return total, nil
}

func (s *Store) RevenueByProduct(ctx context.Context, start, end string, limit int) ([]storage.ProductRevenue, error) {
	q := `
SELECT
  p.product_id,
  COALESCE(p.product_name, ''),
  COALESCE(SUM(` + revenueExpr + `), 0) AS revenue,
  COALESCE(SUM(o.quantity_sold), 0),
  COUNT(o.order_id)
FROM orders o
JOIN products p ON o.product_id = p.product_id
WHERE o.date_of_sale BETWEEN ? AND ?
GROUP BY p.product_id, p.product_name
ORDER BY revenue DESC`
	args := []any{start, end}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
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
  COALESCE(SUM(` + revenueExpr + `), 0) AS revenue,
  COALESCE(SUM(o.quantity_sold), 0),
  COUNT(DISTINCT p.product_id),
  COUNT(o.order_id)
FROM orders o
JOIN products p ON o.product_id = p.product_id
WHERE o.date_of_sale BETWEEN ? AND ?
GROUP BY p.category
ORDER BY revenue DESC`
	args := []any{start, end}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
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
	// No product join needed: region lives on the order row.
	q := `
SELECT
  COALESCE(o.region, ''),
  COALESCE(SUM(` + revenueExpr + `), 0) AS revenue,
  COALESCE(SUM(o.quantity_sold), 0),
  COUNT(DISTINCT o.customer_id),
  COUNT(o.order_id)
FROM orders o
WHERE o.date_of_sale BETWEEN ? AND ?
GROUP BY o.region
ORDER BY revenue DESC`
	args := []any{start, end}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
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

// bucketExpr renders the period key from the canonical TEXT date. Dates are
// always "YYYY-MM-DD", so substr is enough: no date functions needed, and the
// ascending string sort orders buckets chronologically ("2024-Q1" < "2024-Q2").
func bucketExpr(p storage.Period) (string, error) {
	switch p {
	case storage.PeriodMonthly:
		return "substr(o.date_of_sale, 1, 7)", nil
	case storage.PeriodYearly:
		return "substr(o.date_of_sale, 1, 4)", nil
	case storage.PeriodQuarterly:
		return "substr(o.date_of_sale, 1, 4) || '-Q' || ((CAST(substr(o.date_of_sale, 6, 2) AS INTEGER) + 2) / 3)", nil
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
  COALESCE(SUM(` + revenueExpr + `), 0),
  COALESCE(SUM(o.quantity_sold), 0),
  COUNT(o.order_id)
FROM orders o
WHERE o.date_of_sale BETWEEN ? AND ?
GROUP BY period
ORDER BY period`

	rows, err := s.db.QueryContext(ctx, q, start, end)
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
