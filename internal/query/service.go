// Package query wraps the store's read-only aggregations with input
// validation and the composite summary operation.
package query

import (
	"context"
	"fmt"
	"time"

	"salesdb/internal/storage"
)

const dateLayout = "2006-01-02"

// Range is a validated inclusive date range, both ends canonical YYYY-MM-DD.
type Range struct {
	Start string
	End   string
}

// ParseRange validates user-supplied range bounds. Both bounds are required
// and must be strict ISO dates; an inverted range is rejected here rather
// than silently returning zero rows.
func ParseRange(start, end string) (Range, error) {
	if start == "" || end == "" {
		return Range{}, fmt.Errorf("start_date and end_date are required")
	}
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start_date %q (want YYYY-MM-DD)", start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end_date %q (want YYYY-MM-DD)", end)
	}
	if e.Before(s) {
		return Range{}, fmt.Errorf("end_date %s is before start_date %s", end, start)
	}
	return Range{Start: s.Format(dateLayout), End: e.Format(dateLayout)}, nil
}

// Service exposes the revenue aggregations over a Store.
type Service struct {
	Store storage.Store
}

func (s *Service) TotalRevenue(ctx context.Context, r Range) (float64, error) {
	return s.Store.TotalRevenue(ctx, r.Start, r.End)
}

func (s *Service) RevenueByProduct(ctx context.Context, r Range, limit int) ([]storage.ProductRevenue, error) {
	return s.Store.RevenueByProduct(ctx, r.Start, r.End, limit)
}

func (s *Service) RevenueByCategory(ctx context.Context, r Range, limit int) ([]storage.CategoryRevenue, error) {
	return s.Store.RevenueByCategory(ctx, r.Start, r.End, limit)
}

func (s *Service) RevenueByRegion(ctx context.Context, r Range, limit int) ([]storage.RegionRevenue, error) {
	return s.Store.RevenueByRegion(ctx, r.Start, r.End, limit)
}

func (s *Service) RevenueTrends(ctx context.Context, r Range, period storage.Period) ([]storage.TrendPoint, error) {
	return s.Store.RevenueTrends(ctx, r.Start, r.End, period)
}

// Summary is the composite overview for a range. Top pointers are nil when
// the range matched no orders at all.
type Summary struct {
	TotalRevenue float64                  `json:"total_revenue"`
	TopProduct   *storage.ProductRevenue  `json:"top_product"`
	TopCategory  *storage.CategoryRevenue `json:"top_category"`
	TopRegion    *storage.RegionRevenue   `json:"top_region"`
}

// Summary composes the total with the single highest-revenue product,
// category and region for the range. Any store failure aborts the whole
// summary; there is no partial result.
func (s *Service) Summary(ctx context.Context, r Range) (Summary, error) {
	var out Summary

	total, err := s.Store.TotalRevenue(ctx, r.Start, r.End)
	if err != nil {
		return out, fmt.Errorf("total revenue: %w", err)
	}
	out.TotalRevenue = total

	products, err := s.Store.RevenueByProduct(ctx, r.Start, r.End, 1)
	if err != nil {
		return out, fmt.Errorf("top product: %w", err)
	}
	if len(products) > 0 {
		out.TopProduct = &products[0]
	}

	categories, err := s.Store.RevenueByCategory(ctx, r.Start, r.End, 1)
	if err != nil {
		return out, fmt.Errorf("top category: %w", err)
	}
	if len(categories) > 0 {
		out.TopCategory = &categories[0]
	}

	regions, err := s.Store.RevenueByRegion(ctx, r.Start, r.End, 1)
	if err != nil {
		return out, fmt.Errorf("top region: %w", err)
	}
	if len(regions) > 0 {
		out.TopRegion = &regions[0]
	}

	return out, nil
}
