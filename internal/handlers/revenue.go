package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salesdb/internal/query"
	"salesdb/internal/storage"
)

// RevenueHandler serves the read-only revenue aggregations. Every endpoint
// takes start_date and end_date (inclusive, YYYY-MM-DD); malformed input is
// rejected with 400 before the store is touched, store failures map to 500.
type RevenueHandler struct {
	log *zap.Logger
	svc *query.Service
}

func NewRevenueHandler(log *zap.Logger, svc *query.Service) *RevenueHandler {
	return &RevenueHandler{
		log: log.With(zap.String("handler", "RevenueHandler")),
		svc: svc,
	}
}

func (h *RevenueHandler) parseRange(c *gin.Context) (query.Range, bool) {
	r, err := query.ParseRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_range", err)
		return query.Range{}, false
	}
	return r, true
}

// parseLimit reads the optional limit query parameter. Absent means no limit.
func (h *RevenueHandler) parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		RespondError(c, http.StatusBadRequest, "invalid_limit",
			fmt.Errorf("invalid limit %q (want a positive integer)", raw))
		return 0, false
	}
	return n, true
}

func (h *RevenueHandler) fail(c *gin.Context, op string, err error) {
	h.log.Error("revenue query failed", zap.String("op", op), zap.Error(err))
	RespondError(c, http.StatusInternalServerError, "query_failed", err)
}

// GET /revenue/total?start_date=&end_date=
func (h *RevenueHandler) Total(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	total, err := h.svc.TotalRevenue(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "total", err)
		return
	}
	RespondOK(c, gin.H{
		"start_date":    r.Start,
		"end_date":      r.End,
		"total_revenue": total,
	})
}

// GET /revenue/by-product?start_date=&end_date=&limit=
func (h *RevenueHandler) ByProduct(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}
	rows, err := h.svc.RevenueByProduct(c.Request.Context(), r, limit)
	if err != nil {
		h.fail(c, "by-product", err)
		return
	}
	if rows == nil {
		rows = []storage.ProductRevenue{}
	}
	RespondOK(c, gin.H{
		"start_date":     r.Start,
		"end_date":       r.End,
		"total_products": len(rows),
		"products":       rows,
	})
}

// GET /revenue/by-category?start_date=&end_date=&limit=
func (h *RevenueHandler) ByCategory(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}
	rows, err := h.svc.RevenueByCategory(c.Request.Context(), r, limit)
	if err != nil {
		h.fail(c, "by-category", err)
		return
	}
	if rows == nil {
		rows = []storage.CategoryRevenue{}
	}
	RespondOK(c, gin.H{
		"start_date":       r.Start,
		"end_date":         r.End,
		"total_categories": len(rows),
		"categories":       rows,
	})
}

// GET /revenue/by-region?start_date=&end_date=&limit=
func (h *RevenueHandler) ByRegion(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}
	rows, err := h.svc.RevenueByRegion(c.Request.Context(), r, limit)
	if err != nil {
		h.fail(c, "by-region", err)
		return
	}
	if rows == nil {
		rows = []storage.RegionRevenue{}
	}
	RespondOK(c, gin.H{
		"start_date":    r.Start,
		"end_date":      r.End,
		"total_regions": len(rows),
		"regions":       rows,
	})
}

// GET /revenue/trends?start_date=&end_date=&period=
// period defaults to monthly.
func (h *RevenueHandler) Trends(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	period := storage.PeriodMonthly
	if raw := c.Query("period"); raw != "" {
		p, err := storage.ParsePeriod(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_period", err)
			return
		}
		period = p
	}
	rows, err := h.svc.RevenueTrends(c.Request.Context(), r, period)
	if err != nil {
		h.fail(c, "trends", err)
		return
	}
	if rows == nil {
		rows = []storage.TrendPoint{}
	}
	RespondOK(c, gin.H{
		"start_date":  r.Start,
		"end_date":    r.End,
		"period_type": string(period),
		"trends":      rows,
	})
}

// GET /revenue/summary?start_date=&end_date=
func (h *RevenueHandler) Summary(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	sum, err := h.svc.Summary(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "summary", err)
		return
	}
	RespondOK(c, gin.H{
		"start_date": r.Start,
		"end_date":   r.End,
		"summary":    sum,
	})
}
