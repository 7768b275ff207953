package storage

import "fmt"

// Customer, Product and Order are cleaned rows as produced by the loader.
// Pointer fields are nullable: a nil pointer is stored as SQL NULL.
//
// Revenue is never stored; it is derived per order as
// unit_price * quantity_sold * (1 - discount) + shipping_cost.

type Customer struct {
	ID      string
	Name    *string
	Email   *string
	Address *string
}

type Product struct {
	ID       string
	Name     *string
	Category *string
}

type Order struct {
	ID            string
	ProductID     string
	CustomerID    string
	DateOfSale    string // canonical YYYY-MM-DD
	QuantitySold  *int64
	UnitPrice     *float64
	Discount      *float64
	ShippingCost  *float64
	PaymentMethod *string
	Region        *string
}

// Batch is one bounded unit of cleaned input. ApplyBatch commits all three
// slices in a single transaction.
type Batch struct {
	Customers []Customer
	Products  []Product
	Orders    []Order
}

func (b Batch) Empty() bool {
	return len(b.Customers) == 0 && len(b.Products) == 0 && len(b.Orders) == 0
}

// BatchResult reports rows actually inserted by ApplyBatch. Rows whose key
// already existed are not counted.
type BatchResult struct {
	Customers int64 `json:"customers"`
	Products  int64 `json:"products"`
	Orders    int64 `json:"orders"`
}

func (r *BatchResult) Add(o BatchResult) {
	r.Customers += o.Customers
	r.Products += o.Products
	r.Orders += o.Orders
}

// ---- aggregation results ----

// ProductRevenue is one row of the by-product grouping.
type ProductRevenue struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Revenue     float64 `json:"revenue"`
	Quantity    int64   `json:"total_quantity_sold"`
	Orders      int64   `json:"total_orders"`
}

// CategoryRevenue is one row of the by-category grouping.
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Quantity int64   `json:"total_quantity_sold"`
	Products int64   `json:"unique_products"`
	Orders   int64   `json:"total_orders"`
}

// RegionRevenue is one row of the by-region grouping.
type RegionRevenue struct {
	Region    string  `json:"region"`
	Revenue   float64 `json:"revenue"`
	Quantity  int64   `json:"total_quantity_sold"`
	Customers int64   `json:"unique_customers"`
	Orders    int64   `json:"total_orders"`
}

// TrendPoint is one time bucket of the trends aggregation. Period is
// "YYYY-MM", "YYYY-Qn" or "YYYY" depending on the requested granularity.
type TrendPoint struct {
	Period   string  `json:"period"`
	Revenue  float64 `json:"revenue"`
	Quantity int64   `json:"total_quantity_sold"`
	Orders   int64   `json:"total_orders"`
}

// Period selects the trend bucket granularity.
type Period string

const (
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// ParsePeriod validates a user-supplied period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return Period(s), nil
	default:
		return "", fmt.Errorf("invalid period %q (want monthly, quarterly or yearly)", s)
	}
}
