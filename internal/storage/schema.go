// The table specs live here so every backend can derive its DDL from one
// definition without circular imports.
package storage

// TableSpec describes one table in backend-neutral terms. Column types are
// generic ("text", "integer", "real"); each backend maps them to its own
// type system.
type TableSpec struct {
	Name       string
	PrimaryKey string // column name; always a natural text key here
	Columns    []ColumnSpec
	Indexes    []IndexSpec
}

type ColumnSpec struct {
	Name string
	Type string
	// References names a "table(column)" the column points at. Enforcement
	// varies by backend; the loader inserts referenced rows first regardless.
	References string
}

type IndexSpec struct {
	Name    string
	Columns []string
}

const (
	TableCustomers = "customers"
	TableProducts  = "products"
	TableOrders    = "orders"
)

// Tables returns the sales schema in FK dependency order (referenced tables
// first). Backends create them in this order and Reset deletes in reverse.
func Tables() []TableSpec {
	return []TableSpec{
		{
			Name:       TableCustomers,
			PrimaryKey: "customer_id",
			Columns: []ColumnSpec{
				{Name: "customer_id", Type: "text"},
				{Name: "customer_name", Type: "text"},
				{Name: "customer_email", Type: "text"},
				{Name: "customer_address", Type: "text"},
			},
		},
		{
			Name:       TableProducts,
			PrimaryKey: "product_id",
			Columns: []ColumnSpec{
				{Name: "product_id", Type: "text"},
				{Name: "product_name", Type: "text"},
				{Name: "category", Type: "text"},
			},
		},
		{
			Name:       TableOrders,
			PrimaryKey: "order_id",
			Columns: []ColumnSpec{
				{Name: "order_id", Type: "text"},
				{Name: "product_id", Type: "text", References: "products(product_id)"},
				{Name: "customer_id", Type: "text", References: "customers(customer_id)"},
				{Name: "date_of_sale", Type: "text"},
				{Name: "quantity_sold", Type: "integer"},
				{Name: "unit_price", Type: "real"},
				{Name: "discount", Type: "real"},
				{Name: "shipping_cost", Type: "real"},
				{Name: "payment_method", Type: "text"},
				{Name: "region", Type: "text"},
			},
			Indexes: []IndexSpec{
				{Name: "idx_orders_date", Columns: []string{"date_of_sale"}},
				{Name: "idx_orders_product", Columns: []string{"product_id"}},
				{Name: "idx_orders_customer", Columns: []string{"customer_id"}},
			},
		},
	}
}
