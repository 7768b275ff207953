package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salesdb/internal/query"
	"salesdb/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	storage.Store // panic on anything not overridden

	total    float64
	products []storage.ProductRevenue
	trends   []storage.TrendPoint
	err      error
}

func (f *fakeStore) TotalRevenue(_ context.Context, _, _ string) (float64, error) {
	return f.total, f.err
}

func (f *fakeStore) RevenueByProduct(_ context.Context, _, _ string, limit int) ([]storage.ProductRevenue, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.products) {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f *fakeStore) RevenueTrends(_ context.Context, _, _ string, _ storage.Period) ([]storage.TrendPoint, error) {
	return f.trends, f.err
}

func revenueRouter(st storage.Store) *gin.Engine {
	h := NewRevenueHandler(zap.NewNop(), &query.Service{Store: st})
	r := gin.New()
	r.GET("/revenue/total", h.Total)
	r.GET("/revenue/by-product", h.ByProduct)
	r.GET("/revenue/trends", h.Trends)
	return r
}

func doGET(t *testing.T, r *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("response not JSON: %v\n%s", err, w.Body.String())
		}
	}
	return w, body
}

func TestTotal_OK(t *testing.T) {
	t.Parallel()

	r := revenueRouter(&fakeStore{total: 275.5})
	w, body := doGET(t, r, "/revenue/total?start_date=2024-01-01&end_date=2024-12-31")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if body["total_revenue"] != 275.5 {
		t.Fatalf("total_revenue = %v", body["total_revenue"])
	}
	if body["start_date"] != "2024-01-01" || body["end_date"] != "2024-12-31" {
		t.Fatalf("range echo wrong: %v", body)
	}
}

func TestTotal_BadRange(t *testing.T) {
	t.Parallel()

	r := revenueRouter(&fakeStore{})
	cases := []struct {
		name string
		url  string
	}{
		{"missing_params", "/revenue/total"},
		{"bad_start", "/revenue/total?start_date=nope&end_date=2024-12-31"},
		{"inverted", "/revenue/total?start_date=2024-12-31&end_date=2024-01-01"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w, body := doGET(t, r, tc.url)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			if body["error"] == nil {
				t.Fatalf("missing error envelope: %v", body)
			}
		})
	}
}

func TestTotal_StoreError(t *testing.T) {
	t.Parallel()

	r := revenueRouter(&fakeStore{err: context.DeadlineExceeded})
	w, _ := doGET(t, r, "/revenue/total?start_date=2024-01-01&end_date=2024-12-31")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestByProduct_LimitAndShape(t *testing.T) {
	t.Parallel()

	r := revenueRouter(&fakeStore{products: []storage.ProductRevenue{
		{ProductID: "P1", ProductName: "Widget", Revenue: 220, Quantity: 5, Orders: 2},
		{ProductID: "P2", ProductName: "Sofa", Revenue: 55, Quantity: 1, Orders: 1},
	}})

	w, body := doGET(t, r, "/revenue/by-product?start_date=2024-01-01&end_date=2024-12-31&limit=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["total_products"] != float64(1) {
		t.Fatalf("total_products = %v", body["total_products"])
	}
	products := body["products"].([]any)
	first := products[0].(map[string]any)
	if first["product_id"] != "P1" || first["total_quantity_sold"] != float64(5) {
		t.Fatalf("product row shape wrong: %v", first)
	}
}

func TestByProduct_BadLimit(t *testing.T) {
	t.Parallel()

	r := revenueRouter(&fakeStore{})
	for _, lim := range []string{"zero", "-1", "0", "1.5"} {
		w, _ := doGET(t, r, "/revenue/by-product?start_date=2024-01-01&end_date=2024-12-31&limit="+lim)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s status = %d", lim, w.Code)
		}
	}
}

func TestByProduct_EmptyIsArray(t *testing.T) {
	t.Parallel()

	r := revenueRouter(&fakeStore{})
	w, _ := doGET(t, r, "/revenue/by-product?start_date=2024-01-01&end_date=2024-12-31")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	// An empty result renders as [] rather than null.
	var raw struct {
		Products json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw.Products) != "[]" {
		t.Fatalf("products = %s, want []", raw.Products)
	}
}

func TestTrends_PeriodHandling(t *testing.T) {
	t.Parallel()

	r := revenueRouter(&fakeStore{trends: []storage.TrendPoint{
		{Period: "2024-01", Revenue: 190},
	}})

	w, body := doGET(t, r, "/revenue/trends?start_date=2024-01-01&end_date=2024-12-31")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["period_type"] != "monthly" {
		t.Fatalf("default period = %v", body["period_type"])
	}

	w, body = doGET(t, r, "/revenue/trends?start_date=2024-01-01&end_date=2024-12-31&period=quarterly")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["period_type"] != "quarterly" {
		t.Fatalf("period_type = %v", body["period_type"])
	}

	w, _ = doGET(t, r, "/revenue/trends?start_date=2024-01-01&end_date=2024-12-31&period=weekly")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid period status = %d", w.Code)
	}
}
