// Package loader implements the CSV ingestion pipeline: stream the source in
// bounded batches, clean and deduplicate each batch into the three table
// projections, and commit each batch's inserts as one transaction.
package loader

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"salesdb/internal/config"
	"salesdb/internal/metrics"
	csvparser "salesdb/internal/parser/csv"
	"salesdb/internal/storage"
	"salesdb/internal/transformer"
)

// Logger is the minimal logging interface used by the loader.
// *log.Logger satisfies this interface; zap does via zap.NewStdLog.
type Logger interface {
	Printf(format string, v ...any)
}

// inputColumns is the canonical column order rows are aligned to. The parser
// maps source headers ("Customer ID") onto these names.
var inputColumns = []string{
	"customer_id", "customer_name", "customer_email", "customer_address",
	"product_id", "product_name", "category",
	"order_id", "date_of_sale", "quantity_sold", "unit_price",
	"discount", "shipping_cost", "payment_method", "region",
}

// keyColumns must be present in the source header; a file without them is
// structurally wrong and aborts the run before any row streams.
var keyColumns = []string{"order_id", "product_id", "customer_id"}

const (
	colCustomerID = iota
	colCustomerName
	colCustomerEmail
	colCustomerAddress
	colProductID
	colProductName
	colCategory
	colOrderID
	colDateOfSale
	colQuantitySold
	colUnitPrice
	colDiscount
	colShippingCost
	colPaymentMethod
	colRegion
)

// Loader ingests CSV files into a Store.
//
// Concurrency: a Loader is safe to share; each Load call owns its own stream.
// Two concurrent loads of overlapping data are safe (idempotent inserts), but
// two concurrent overwrite runs can interleave delete and insert. That race
// is accepted and intentionally not locked against.
type Loader struct {
	Store  storage.Store
	Logger Logger

	// BatchSize bounds rows read, cleaned and committed as one unit.
	// Defaults to 10000.
	BatchSize int

	// ParserOptions are passed to the CSV parser (comma, encoding, ...).
	ParserOptions config.Options
}

func (l *Loader) logf() func(format string, v ...any) {
	if l.Logger == nil {
		return log.New(io.Discard, "", 0).Printf
	}
	return l.Logger.Printf
}

// Load ingests the CSV at path.
//
// Overwrite mode first clears all three tables in one committed step; only
// then does reading begin. Each batch commits before the next batch is read,
// so a crash or hard error loses at most the in-flight batch. Previously
// committed batches are never rolled back.
//
// Errors:
//   - Unreadable file, malformed CSV structure and store failures abort the
//     run with a non-nil error; the returned Report covers work done so far.
//   - Rows with missing keys or unparseable dates are not errors: they are
//     dropped and counted in Report.Dropped.
func (l *Loader) Load(ctx context.Context, path string, mode Mode) (Report, error) {
	start := time.Now()
	logf := l.logf()

	rep := Report{Path: path, Mode: mode}

	if mode != ModeAppend && mode != ModeOverwrite {
		return rep, fmt.Errorf("invalid mode %q", mode)
	}

	onDone := func(err error) (Report, error) {
		rep.Duration = time.Since(start).Truncate(time.Millisecond)
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"mode": string(mode), "status": status})
		return rep, err
	}

	if mode == ModeOverwrite {
		if err := l.Store.Reset(ctx); err != nil {
			return onDone(fmt.Errorf("clear existing data: %w", err))
		}
		logf("stage=clear ok mode=overwrite path=%s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return onDone(fmt.Errorf("open source: %w", err))
	}

	// The stream gets its own cancelable context so aborting the parse does
	// not poison the in-flight batch commit.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = 10000
	}

	rowCh := make(chan *transformer.Row, 256)

	// The first structural CSV error cancels the stream and fails the run.
	var parseOnce sync.Once
	var parseErr error
	onParseErr := func(line int, err error) {
		if err == nil {
			return
		}
		parseOnce.Do(func() {
			parseErr = fmt.Errorf("parse error at line %d: %w", line, err)
			cancel()
		})
	}

	opts := make(config.Options, len(l.ParserOptions)+1)
	for k, v := range l.ParserOptions {
		opts[k] = v
	}
	opts["required_columns"] = keyColumns

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(rowCh)
		_ = csvparser.StreamRows(streamCtx, f, inputColumns, opts, rowCh, onParseErr)
	}()

	pending := make([]*transformer.Row, 0, batchSize)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		batch := l.buildBatch(pending, &rep)

		commitStart := time.Now()
		res, err := l.Store.ApplyBatch(ctx, batch)
		rep.Inserted.Add(res)
		if err != nil {
			return fmt.Errorf("apply batch: %w", err)
		}
		metrics.ObserveHistogram(metrics.BatchCommitSeconds, time.Since(commitStart).Seconds(), nil)
		metrics.IncCounter(metrics.BatchesTotal, 1, nil)

		rep.Batches++
		for _, r := range pending {
			r.Free()
		}
		pending = pending[:0]
		return nil
	}

	fail := func(err error) (Report, error) {
		cancel()
		for _, r := range pending {
			r.Drop()
		}
		for r := range rowCh {
			r.Drop()
		}
		wg.Wait()
		return onDone(err)
	}

	for row := range rowCh {
		pending = append(pending, row)
		rep.RowsRead++
		if len(pending) >= batchSize {
			if err := flush(); err != nil {
				return fail(err)
			}
		}
	}
	wg.Wait()

	if parseErr != nil {
		for _, r := range pending {
			r.Drop()
		}
		return onDone(parseErr)
	}

	if err := flush(); err != nil {
		return fail(err)
	}

	metrics.IncCounter(metrics.RowsTotal, float64(rep.RowsRead), metrics.Labels{"kind": "read"})

	rep.Duration = time.Since(start).Truncate(time.Millisecond)
	logf("stage=load ok path=%s mode=%s rows=%d batches=%d inserted_orders=%d inserted_customers=%d inserted_products=%d dropped=%d duration=%s",
		path, mode, rep.RowsRead, rep.Batches,
		rep.Inserted.Orders, rep.Inserted.Customers, rep.Inserted.Products,
		rep.Dropped.Total(), rep.Duration)

	return onDone(nil)
}

// buildBatch projects one slice of raw rows into the three cleaned
// sub-tables. Within the batch, customers and products are deduplicated by
// key with first occurrence winning; orders keep their input order and rely
// on the store's insert-if-absent semantics for cross-batch duplicates.
func (l *Loader) buildBatch(rows []*transformer.Row, rep *Report) storage.Batch {
	var b storage.Batch
	droppedBefore := rep.Dropped.Total()
	seenCustomers := make(map[string]struct{})
	seenProducts := make(map[string]struct{})

	for _, row := range rows {
		// Customer projection.
		if id, ok := keyField(row.V[colCustomerID]); ok {
			if _, dup := seenCustomers[id]; !dup {
				seenCustomers[id] = struct{}{}
				b.Customers = append(b.Customers, storage.Customer{
					ID:      id,
					Name:    strField(row.V[colCustomerName]),
					Email:   strField(row.V[colCustomerEmail]),
					Address: strField(row.V[colCustomerAddress]),
				})
			}
		} else {
			rep.Dropped.Customers++
		}

		// Product projection.
		if id, ok := keyField(row.V[colProductID]); ok {
			if _, dup := seenProducts[id]; !dup {
				seenProducts[id] = struct{}{}
				b.Products = append(b.Products, storage.Product{
					ID:       id,
					Name:     strField(row.V[colProductName]),
					Category: strField(row.V[colCategory]),
				})
			}
		} else {
			rep.Dropped.Products++
		}

		// Order projection.
		orderID, okOrder := keyField(row.V[colOrderID])
		productID, okProduct := keyField(row.V[colProductID])
		customerID, okCustomer := keyField(row.V[colCustomerID])
		if !okOrder || !okProduct || !okCustomer {
			rep.Dropped.OrdersMissingKey++
			continue
		}

		rawDate, _ := keyField(row.V[colDateOfSale])
		date, ok := transformer.NormalizeSaleDate(rawDate)
		if !ok {
			rep.Dropped.OrdersBadDate++
			continue
		}

		b.Orders = append(b.Orders, storage.Order{
			ID:            orderID,
			ProductID:     productID,
			CustomerID:    customerID,
			DateOfSale:    date,
			QuantitySold:  intField(row.V[colQuantitySold]),
			UnitPrice:     floatField(row.V[colUnitPrice]),
			Discount:      floatField(row.V[colDiscount]),
			ShippingCost:  floatField(row.V[colShippingCost]),
			PaymentMethod: strField(row.V[colPaymentMethod]),
			Region:        strField(row.V[colRegion]),
		})
	}

	if n := rep.Dropped.Total() - droppedBefore; n > 0 {
		metrics.IncCounter(metrics.RowsTotal, float64(n), metrics.Labels{"kind": "dropped"})
	}
	return b
}
