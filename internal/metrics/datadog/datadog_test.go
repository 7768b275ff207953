package datadog

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"salesdb/internal/metrics"
)

// fakeSubmitter captures payloads submitted by Backend.Flush().
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
	err      error
}

func (f *fakeSubmitter) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeSubmitter) last() (datadogV2.MetricPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return datadogV2.MetricPayload{}, false
	}
	return f.payloads[len(f.payloads)-1], true
}

// newTestBackend builds a Backend with a fake submitter, a frozen clock and a
// ticker that never fires, so only explicit Flush()/Close() submit.
func newTestBackend(t *testing.T, fake *fakeSubmitter) *Backend {
	t.Helper()

	b, err := NewBackend(context.Background(), Options{
		JobName: "test_job",
		now:     func() time.Time { return time.Unix(1700000000, 0) },
		newTicker: func(time.Duration) *time.Ticker {
			return &time.Ticker{C: make(chan time.Time)}
		},
		submitter: fake,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b
}

func seriesByMetric(p datadogV2.MetricPayload) map[string]datadogV2.MetricSeries {
	out := make(map[string]datadogV2.MetricSeries, len(p.Series))
	for _, s := range p.Series {
		out[s.Metric] = s
	}
	return out
}

func TestResolveEnvTag(t *testing.T) {
	oldENV := os.Getenv("ENV")
	oldDDENV := os.Getenv("DD_ENV")
	t.Cleanup(func() {
		_ = os.Setenv("ENV", oldENV)
		_ = os.Setenv("DD_ENV", oldDDENV)
	})

	tests := []struct {
		name string
		env  string
		dd   string
		want string
	}{
		{name: "ENV_wins", env: "prod", dd: "stage", want: "env:prod"},
		{name: "DD_ENV_used_when_ENV_empty", env: "", dd: "stage", want: "env:stage"},
		{name: "whitespace_ignored", env: "   ", dd: "\n\t", want: "env:unknown"},
		{name: "default_unknown", env: "", dd: "", want: "env:unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_ = os.Setenv("ENV", tc.env)
			_ = os.Setenv("DD_ENV", tc.dd)
			if got := resolveEnvTag(); got != tc.want {
				t.Fatalf("resolveEnvTag()=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestFlush_BuildsExpectedSeries(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	b.IncCounter(metrics.RowsTotal, 100, metrics.Labels{"kind": "read"})
	b.IncCounter(metrics.RowsTotal, 7, metrics.Labels{"kind": "dropped"})
	b.IncCounter(metrics.BatchesTotal, 3, nil)
	b.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"mode": "append", "status": "ok"})
	b.ObserveHistogram(metrics.BatchCommitSeconds, 0.2, nil)
	b.ObserveHistogram(metrics.BatchCommitSeconds, 0.4, nil)

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	payload, ok := fake.last()
	if !ok {
		t.Fatal("no payload submitted")
	}
	byName := seriesByMetric(payload)

	rows, ok := byName["sales.rows.total"]
	if !ok {
		t.Fatalf("sales.rows.total missing, got %v", payload.Series)
	}
	// Two kinds means two series; check the tag on at least one.
	foundKind := false
	for _, s := range payload.Series {
		if s.Metric != "sales.rows.total" {
			continue
		}
		for _, tag := range s.Tags {
			if tag == "kind:read" || tag == "kind:dropped" {
				foundKind = true
			}
		}
	}
	if !foundKind {
		t.Fatalf("rows series missing kind tag: %+v", rows.Tags)
	}

	batches, ok := byName["sales.batches.total"]
	if !ok || *batches.Points[0].Value != 3 {
		t.Fatalf("batches series wrong: %+v", batches)
	}

	runs, ok := byName["sales.runs.total"]
	if !ok {
		t.Fatal("runs series missing")
	}
	wantTags := map[string]bool{"mode:append": false, "status:ok": false, "job:test_job": false}
	for _, tag := range runs.Tags {
		if _, exists := wantTags[tag]; exists {
			wantTags[tag] = true
		}
	}
	for tag, seen := range wantTags {
		if !seen {
			t.Fatalf("runs series missing tag %s: %v", tag, runs.Tags)
		}
	}

	maxS, ok := byName["sales.batch_commit_seconds.max"]
	if !ok || *maxS.Points[0].Value != 0.4 {
		t.Fatalf("commit max series wrong: %+v", maxS)
	}
	samples := byName["sales.batch_commit_seconds.samples"]
	if *samples.Points[0].Value != 2 {
		t.Fatalf("sample count wrong: %+v", samples)
	}
}

func TestFlush_EmptySubmitsNothing(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fake.count() != 0 {
		t.Fatalf("empty backend submitted %d payloads", fake.count())
	}
}

func TestFlush_ResetsBuffers(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)
	defer func() { _ = b.Close() }()

	b.IncCounter(metrics.BatchesTotal, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("first Flush: %v", err)
	}
	if fake.count() != 1 {
		t.Fatalf("payloads = %d", fake.count())
	}

	// Nothing buffered after the first flush.
	if err := b.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if fake.count() != 1 {
		t.Fatalf("second flush submitted despite empty buffers: %d", fake.count())
	}
}

func TestFlush_SubmitErrorStillResets(t *testing.T) {
	fake := &fakeSubmitter{err: errors.New("intake down")}
	b := newTestBackend(t, fake)
	defer func() { _ = b.Close() }()

	b.IncCounter(metrics.BatchesTotal, 1, nil)
	if err := b.Flush(); err == nil {
		t.Fatal("expected submit error")
	}

	// Buffers were reset despite the failure; the retry has nothing to send.
	fake.err = nil
	if err := b.Flush(); err != nil {
		t.Fatalf("flush after failure: %v", err)
	}
	if fake.count() != 1 {
		t.Fatalf("payloads = %d, want 1 (failed submit counts, empty retry does not)", fake.count())
	}
}

func TestIncCounter_IgnoresJunk(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	b.IncCounter(metrics.RowsTotal, -5, metrics.Labels{"kind": "read"}) // negative
	b.IncCounter(metrics.RowsTotal, 5, nil)                            // missing kind
	b.IncCounter("unrelated_metric", 5, nil)                           // unknown name
	b.ObserveHistogram("unrelated_histogram", 1, nil)
	b.ObserveHistogram(metrics.BatchCommitSeconds, -1, nil) // negative sample

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fake.count() != 0 {
		t.Fatalf("junk produced %d payloads", fake.count())
	}
}

func TestRunKeyRoundTrip(t *testing.T) {
	tests := []struct {
		mode   string
		status string
	}{
		{"append", "ok"},
		{"overwrite", "error"},
		{"", "ok"},
		{"", ""},
	}
	for _, tc := range tests {
		mode, status := splitRunKey(runKey(tc.mode, tc.status))
		if mode != tc.mode || status != tc.status {
			t.Fatalf("round trip (%q,%q) -> (%q,%q)", tc.mode, tc.status, mode, status)
		}
	}
}

func TestPercentileNearestRank(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.5, 6},
		{1, 10},
	}
	for _, tc := range cases {
		if got := percentileNearestRank(s, tc.p); got != tc.want {
			t.Fatalf("p%v = %v, want %v", tc.p, got, tc.want)
		}
	}
	if got := percentileNearestRank(nil, 0.5); got != 0 {
		t.Fatalf("empty slice p50 = %v", got)
	}
}

func TestParseTagsCSV(t *testing.T) {
	got := ParseTagsCSV(" env:prod , service:salesd ,, ")
	if len(got) != 2 || got[0] != "env:prod" || got[1] != "service:salesd" {
		t.Fatalf("ParseTagsCSV = %v", got)
	}
	if got := ParseTagsCSV(""); got != nil {
		t.Fatalf("empty input = %v", got)
	}
}
