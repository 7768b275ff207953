package loader

import (
	"time"

	"salesdb/internal/storage"
)

// DropCounts breaks out rows excluded during cleaning, by reason.
type DropCounts struct {
	// Customers counts rows missing a customer_id, excluded from the
	// customer projection only.
	Customers int64 `json:"customers_missing_key"`

	// Products counts rows missing a product_id, excluded from the
	// product projection only.
	Products int64 `json:"products_missing_key"`

	// OrdersMissingKey counts rows missing any of order_id, product_id or
	// customer_id.
	OrdersMissingKey int64 `json:"orders_missing_key"`

	// OrdersBadDate counts rows whose date_of_sale failed to parse.
	OrdersBadDate int64 `json:"orders_bad_date"`
}

func (d DropCounts) Total() int64 {
	return d.Customers + d.Products + d.OrdersMissingKey + d.OrdersBadDate
}

// Report summarizes one load run. On error it covers the work completed
// before the failure.
type Report struct {
	Path     string              `json:"path"`
	Mode     Mode                `json:"mode"`
	RowsRead int64               `json:"rows_read"`
	Batches  int64               `json:"batches"`
	Inserted storage.BatchResult `json:"inserted"`
	Dropped  DropCounts          `json:"dropped"`
	Duration time.Duration       `json:"duration"`
}
