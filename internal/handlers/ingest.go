package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"salesdb/internal/loader"
)

// RunFunc executes one load run. The production implementation is
// (*loader.Loader).Load; tests substitute their own.
type RunFunc func(ctx context.Context, path string, mode loader.Mode) (loader.Report, error)

// IngestHandler accepts refresh requests and runs them in the background.
// The response is dispatched before the load starts; progress and outcome
// go to the log under the returned run_id.
type IngestHandler struct {
	log *zap.Logger
	run RunFunc
}

func NewIngestHandler(log *zap.Logger, run RunFunc) *IngestHandler {
	return &IngestHandler{
		log: log.With(zap.String("handler", "IngestHandler")),
		run: run,
	}
}

type refreshRequest struct {
	CSVPath string `json:"csv_path"`
	Mode    string `json:"mode"`
}

// POST /refresh-data
// { csv_path, mode } with mode "append" (default) or "overwrite".
// Responds 202 with a run_id; the load proceeds asynchronously.
func (h *IngestHandler) RefreshData(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.CSVPath == "" {
		RespondError(c, http.StatusBadRequest, "missing_csv_path",
			errMissingCSVPath)
		return
	}

	mode := loader.ModeAppend
	if req.Mode != "" {
		m, err := loader.ParseMode(req.Mode)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_mode", err)
			return
		}
		mode = m
	}

	runID := uuid.NewString()
	log := h.log.With(
		zap.String("run_id", runID),
		zap.String("path", req.CSVPath),
		zap.String("mode", string(mode)),
	)
	log.Info("refresh accepted")

	go func() {
		// Detached from the request context: the run outlives the response.
		rep, err := h.run(context.Background(), req.CSVPath, mode)
		if err != nil {
			log.Error("refresh failed", zap.Error(err))
			return
		}
		log.Info("refresh finished",
			zap.Int64("rows_read", rep.RowsRead),
			zap.Int64("batches", rep.Batches),
			zap.Int64("orders_inserted", rep.Inserted.Orders),
			zap.Int64("dropped", rep.Dropped.Total()),
			zap.Duration("duration", rep.Duration),
		)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "data refresh started",
		"run_id":  runID,
	})
}

var errMissingCSVPath = errors.New("csv_path is required")
