// Package storage defines the backend-agnostic sales store interface, the
// table specifications shared by all backends, and the backend factory
// registry.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config is the minimal configuration needed to create a Store.
//
// Kind must match a registered backend kind ("sqlite", "postgres", "mssql").
// DSN is passed through to the backend factory; validation is
// backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Store is the backend-agnostic interface over the three sales tables.
//
// IMPORTANT: the interface is intentionally minimal and focused on what the
// loader and query service need. Each backend implements the semantics in its
// own idiomatic way (Postgres ON CONFLICT, SQLite OR IGNORE, SQL Server
// NOT EXISTS guards).
//
// All write paths are idempotent at the primary-key level: re-applying a row
// whose key already exists is a no-op, never an update.
type Store interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureSchema creates the customers/products/orders tables and their
	// supporting indexes if they do not exist. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error

	// Reset deletes all rows from orders, then products, then customers
	// (FK dependency order) inside one transaction. Used by overwrite loads.
	Reset(ctx context.Context) error

	// ApplyBatch inserts one cleaned batch inside a single transaction:
	// customers and products before orders, each insert-if-key-absent.
	// The returned counts reflect rows actually inserted (duplicates of
	// existing keys do not count).
	ApplyBatch(ctx context.Context, b Batch) (BatchResult, error)

	// TotalRevenue sums derived revenue over an inclusive date range.
	// Returns 0 when no orders match.
	TotalRevenue(ctx context.Context, start, end string) (float64, error)

	// RevenueByProduct groups by (product_id, product_name), descending by
	// revenue. limit <= 0 means no limit.
	RevenueByProduct(ctx context.Context, start, end string, limit int) ([]ProductRevenue, error)

	// RevenueByCategory groups by category, adding a distinct product count.
	RevenueByCategory(ctx context.Context, start, end string, limit int) ([]CategoryRevenue, error)

	// RevenueByRegion groups by region over orders only, adding a distinct
	// customer count.
	RevenueByRegion(ctx context.Context, start, end string, limit int) ([]RegionRevenue, error)

	// RevenueTrends buckets orders by calendar period, ascending by bucket.
	RevenueTrends(ctx context.Context, start, end string, period Period) ([]TrendPoint, error)
}

// ---- backend factories ----

type factory func(ctx context.Context, cfg Config) (Store, error)

var (
	facMu     sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// Call Register from an init() function in a backend package. Registering the
// same kind twice panics; this fails fast instead of allowing ambiguous
// backend selection.
func Register(kind string, f factory) {
	facMu.Lock()
	defer facMu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Store using the registered backend factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	facMu.RLock()
	f := factories[cfg.Kind]
	facMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
