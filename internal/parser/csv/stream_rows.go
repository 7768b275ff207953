// Package csv streams CSV sources into pooled rows aligned to a caller-chosen
// canonical column order.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"salesdb/internal/config"
	"salesdb/internal/transformer"
)

// decodeReader wraps r with a charset decoder when the "encoding" option is
// set. UTF-8 input (the default) is passed through untouched.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported csv encoding %q", encoding)
	}
}

// missingColumns returns the required column names absent from the mapped
// header, preserving the order of required.
func missingColumns(required []string, srcToIdx map[string]int) []string {
	var missing []string
	for _, name := range required {
		if _, ok := srcToIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// StreamRows streams CSV into pooled *transformer.Row objects aligned to the
// target 'columns' order.
//
// Header handling:
//   - By default headers are normalized to lower_snake_case, so the canonical
//     column "customer_id" matches a source header "Customer ID".
//   - An explicit "header_map" option overrides individual headers.
//   - A UTF-8 BOM on the first header is stripped.
//   - If the "required_columns" option names columns the header does not
//     cover, the stream fails before any row is emitted.
//
// Missing or empty source fields become nil in the row; downstream cleaning
// decides whether nil is tolerable for a given column.
//
// NOTE on cancellation:
// On ctx cancellation in-flight rows must NOT be returned to the pool (Drop
// instead), otherwise the parser can reuse them while downstream drain-safe
// stages still read them.
func StreamRows(
	ctx context.Context,
	src io.ReadCloser,
	columns []string,
	opt config.Options,
	out chan<- *transformer.Row,
	onErr func(line int, err error),
) error {
	defer src.Close()

	var line int

	hasHeader := opt.Bool("has_header", true)
	comma := opt.Rune("comma", ',')
	trim := opt.Bool("trim_space", true)
	hm := opt.StringMap("header_map")
	lazy := opt.Bool("lazy_quotes", false)
	fieldsPer := opt.Int("fields_per_record", 0)

	r, err := decodeReader(src, opt.String("encoding", ""))
	if err != nil {
		if onErr != nil {
			onErr(0, err)
		}
		return err
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.LazyQuotes = lazy
	if fieldsPer != 0 {
		cr.FieldsPerRecord = fieldsPer
	} else {
		cr.FieldsPerRecord = -1
	}

	colIx := make([]int, len(columns))
	for i := range colIx {
		colIx[i] = -1
	}

	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	if hasHeader {
		hdr, err := readRec()
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("read header: %w", err))
			}
			return err
		}
		srcToIdx := make(map[string]int, len(hdr))
		for i, h := range hdr {
			if transformer.HasEdgeSpace(h) {
				h = strings.TrimSpace(h)
			}
			if i == 0 {
				h = strings.TrimPrefix(h, "\uFEFF")
			}
			if mapped, ok := hm[h]; ok {
				h = mapped
			} else {
				h = strings.ReplaceAll(strings.ToLower(h), " ", "_")
			}
			srcToIdx[h] = i
		}
		for t, target := range columns {
			if si, ok := srcToIdx[target]; ok {
				colIx[t] = si
			}
		}
		if missing := missingColumns(opt.Strings("required_columns"), srcToIdx); len(missing) > 0 {
			err := fmt.Errorf("header missing required columns: %s", strings.Join(missing, ", "))
			if onErr != nil {
				onErr(line, err)
			}
			return err
		}
	} else {
		for i := range columns {
			colIx[i] = i
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := readRec()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}

		row := transformer.GetRow(len(columns))
		row.Line = line

		for t := range columns {
			si := colIx[t]
			if si < 0 || si >= len(rec) {
				row.V[t] = nil
				continue
			}
			v := rec[si]
			if trim && transformer.HasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				row.V[t] = nil
			} else {
				row.V[t] = v
			}
		}

		select {
		case out <- row:
		case <-ctx.Done():
			// IMPORTANT: do not re-pool on cancellation
			row.Drop()
			return ctx.Err()
		}
	}
}
