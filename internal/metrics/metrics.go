// Package metrics is a thin seam between ingestion code and a metrics
// backend. Core code calls the package-level helpers; binaries decide at
// startup whether a real backend (Datadog) is installed. The default backend
// discards everything, so instrumented code pays no setup cost in tests.
package metrics

import "sync"

// Labels are metric dimensions, e.g. {"kind": "orders_inserted"}.
type Labels map[string]string

// Backend receives metric updates. Implementations must be safe for
// concurrent use.
type Backend interface {
	// IncCounter adds delta to a named counter.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a distribution.
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush submits buffered metrics now.
	Flush() error

	// Close stops background work and performs a final Flush.
	Close() error
}

// Metric names emitted by the loader. Kept here so backend implementations
// and call sites agree on the contract.
const (
	RowsTotal          = "sales_rows_total"           // labels: kind
	BatchesTotal       = "sales_batches_total"        // no labels
	RunsTotal          = "sales_runs_total"           // labels: mode, status
	BatchCommitSeconds = "sales_batch_commit_seconds" // no labels
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }
func (nopBackend) Close() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the process-wide backend. Call once at startup,
// before ingestion begins.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to a counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records a sample on the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush flushes the installed backend.
func Flush() error { return current().Flush() }

// Close closes the installed backend.
func Close() error { return current().Close() }
