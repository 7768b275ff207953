package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"salesdb/internal/loader"
)

type runRecorder struct {
	mu    sync.Mutex
	calls []struct {
		path string
		mode loader.Mode
	}
	done chan struct{}
}

func newRunRecorder() *runRecorder {
	return &runRecorder{done: make(chan struct{}, 8)}
}

func (r *runRecorder) run(_ context.Context, path string, mode loader.Mode) (loader.Report, error) {
	r.mu.Lock()
	r.calls = append(r.calls, struct {
		path string
		mode loader.Mode
	}{path, mode})
	r.mu.Unlock()
	r.done <- struct{}{}
	return loader.Report{}, nil
}

func ingestRouter(run RunFunc) *gin.Engine {
	h := NewIngestHandler(zap.NewNop(), run)
	r := gin.New()
	r.POST("/refresh-data", h.RefreshData)
	return r
}

func doPOST(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/refresh-data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response not JSON: %v\n%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestRefreshData_AcceptedAndRuns(t *testing.T) {
	t.Parallel()

	rec := newRunRecorder()
	r := ingestRouter(rec.run)

	w, resp := doPOST(t, r, `{"csv_path": "/data/sales.csv", "mode": "overwrite"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	runID, _ := resp["run_id"].(string)
	if _, err := uuid.Parse(runID); err != nil {
		t.Fatalf("run_id %q is not a UUID: %v", runID, err)
	}

	<-rec.done
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 1 {
		t.Fatalf("run called %d times", len(rec.calls))
	}
	if rec.calls[0].path != "/data/sales.csv" || rec.calls[0].mode != loader.ModeOverwrite {
		t.Fatalf("run args = %+v", rec.calls[0])
	}
}

func TestRefreshData_DefaultsToAppend(t *testing.T) {
	t.Parallel()

	rec := newRunRecorder()
	r := ingestRouter(rec.run)

	w, _ := doPOST(t, r, `{"csv_path": "/data/sales.csv"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}

	<-rec.done
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.calls[0].mode != loader.ModeAppend {
		t.Fatalf("mode = %v, want append", rec.calls[0].mode)
	}
}

func TestRefreshData_Rejections(t *testing.T) {
	t.Parallel()

	rec := newRunRecorder()
	r := ingestRouter(rec.run)

	cases := []struct {
		name string
		body string
	}{
		{"not_json", "not json"},
		{"missing_path", `{"mode": "append"}`},
		{"bad_mode", `{"csv_path": "/data/sales.csv", "mode": "replace"}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doPOST(t, r, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 0 {
		t.Fatalf("rejected requests must not start runs, got %d", len(rec.calls))
	}
}
