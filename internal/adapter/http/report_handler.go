package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service  interfaces.SalesService
	location *time.Location
	logger   logger.Logger
}

func NewReportHandler(service interfaces.SalesService, loc *time.Location, logger logger.Logger) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{
		service:  service,
		location: loc,
		logger:   logger,
	}
}

type DailyReportResponse struct {
	Date        string `json:"date"`
	TotalOrders int    `json:"total_orders"`
	PaidCount   int    `json:"paid_count"`
	UnpaidCount int    `json:"unpaid_count"`
	TotalSales  string `json:"total_sales"`
}

// Daily serves ?date=YYYY-MM-DD; without it the current day is reported.
func (h *ReportHandler) Daily(c *gin.Context) {
	var day time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, h.location)
		if err != nil {
			respondError(c, h.logger, domain.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
			return
		}
		day = parsed
	}

	report, err := h.service.DailyReport(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, DailyReportResponse{
		Date:        report.Date.Format(time.DateOnly),
		TotalOrders: report.TotalOrders,
		PaidCount:   report.PaidCount,
		UnpaidCount: report.UnpaidCount,
		TotalSales:  report.TotalSales.StringFixed(2),
	})
}
