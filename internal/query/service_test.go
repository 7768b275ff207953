package query

import (
	"context"
	"errors"
	"testing"

	"salesdb/internal/storage"
)

// stubStore returns canned aggregation results and records the ranges and
// limits it was asked for.
type stubStore struct {
	total      float64
	products   []storage.ProductRevenue
	categories []storage.CategoryRevenue
	regions    []storage.RegionRevenue
	trends     []storage.TrendPoint
	err        error

	gotLimits []int
}

func (s *stubStore) Close()                                 {}
func (s *stubStore) EnsureSchema(context.Context) error     { return nil }
func (s *stubStore) Reset(context.Context) error            { return nil }
func (s *stubStore) ApplyBatch(context.Context, storage.Batch) (storage.BatchResult, error) {
	return storage.BatchResult{}, nil
}

func (s *stubStore) TotalRevenue(_ context.Context, _, _ string) (float64, error) {
	return s.total, s.err
}

func (s *stubStore) RevenueByProduct(_ context.Context, _, _ string, limit int) ([]storage.ProductRevenue, error) {
	s.gotLimits = append(s.gotLimits, limit)
	return s.products, s.err
}

func (s *stubStore) RevenueByCategory(_ context.Context, _, _ string, limit int) ([]storage.CategoryRevenue, error) {
	s.gotLimits = append(s.gotLimits, limit)
	return s.categories, s.err
}

func (s *stubStore) RevenueByRegion(_ context.Context, _, _ string, limit int) ([]storage.RegionRevenue, error) {
	s.gotLimits = append(s.gotLimits, limit)
	return s.regions, s.err
}

func (s *stubStore) RevenueTrends(_ context.Context, _, _ string, _ storage.Period) ([]storage.TrendPoint, error) {
	return s.trends, s.err
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{"valid", "2024-01-01", "2024-12-31", false},
		{"single_day", "2024-01-01", "2024-01-01", false},
		{"missing_start", "", "2024-12-31", true},
		{"missing_end", "2024-01-01", "", true},
		{"inverted", "2024-12-31", "2024-01-01", true},
		{"unpadded", "2024-1-1", "2024-12-31", true},
		{"not_a_date", "yesterday", "2024-12-31", true},
		{"datetime", "2024-01-01T00:00:00", "2024-12-31", true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := ParseRange(tc.start, tc.end)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseRange(%q, %q) accepted", tc.start, tc.end)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q, %q): %v", tc.start, tc.end, err)
			}
			if r.Start != tc.start || r.End != tc.end {
				t.Fatalf("range = %+v", r)
			}
		})
	}
}

func TestSummary_ComposesTops(t *testing.T) {
	t.Parallel()

	st := &stubStore{
		total:      275,
		products:   []storage.ProductRevenue{{ProductID: "P1", ProductName: "Widget", Revenue: 220}},
		categories: []storage.CategoryRevenue{{Category: "Gadgets", Revenue: 220}},
		regions:    []storage.RegionRevenue{{Region: "North", Revenue: 220}},
	}
	svc := &Service{Store: st}

	r := Range{Start: "2024-01-01", End: "2024-12-31"}
	sum, err := svc.Summary(context.Background(), r)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalRevenue != 275 {
		t.Fatalf("total = %v", sum.TotalRevenue)
	}
	if sum.TopProduct == nil || sum.TopProduct.ProductID != "P1" {
		t.Fatalf("top product = %+v", sum.TopProduct)
	}
	if sum.TopCategory == nil || sum.TopCategory.Category != "Gadgets" {
		t.Fatalf("top category = %+v", sum.TopCategory)
	}
	if sum.TopRegion == nil || sum.TopRegion.Region != "North" {
		t.Fatalf("top region = %+v", sum.TopRegion)
	}

	// Summary only ever needs the single top row of each grouping.
	for _, l := range st.gotLimits {
		if l != 1 {
			t.Fatalf("summary used limit %d, want 1", l)
		}
	}
}

func TestSummary_EmptyRange(t *testing.T) {
	t.Parallel()

	svc := &Service{Store: &stubStore{}}
	sum, err := svc.Summary(context.Background(), Range{Start: "2023-01-01", End: "2023-12-31"})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalRevenue != 0 {
		t.Fatalf("total = %v", sum.TotalRevenue)
	}
	if sum.TopProduct != nil || sum.TopCategory != nil || sum.TopRegion != nil {
		t.Fatalf("empty range should have nil tops: %+v", sum)
	}
}

func TestSummary_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend down")
	svc := &Service{Store: &stubStore{err: wantErr}}
	if _, err := svc.Summary(context.Background(), Range{Start: "2024-01-01", End: "2024-12-31"}); !errors.Is(err, wantErr) {
		t.Fatalf("error not propagated: %v", err)
	}
}
