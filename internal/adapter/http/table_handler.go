package http

import (
	"net/http"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	service interfaces.FloorPlanService
	logger  logger.Logger
}

func NewTableHandler(service interfaces.FloorPlanService, logger logger.Logger) *TableHandler {
	return &TableHandler{
		service: service,
		logger:  logger,
	}
}

type TableRequest struct {
	TableNumber int `json:"table_number"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type TableResponse struct {
	ID          int    `json:"id"`
	TableNumber int    `json:"table_number"`
	Status      string `json:"status"`
}

func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]TableResponse, 0, len(tables))
	for _, t := range tables {
		resp = append(resp, TableResponse{ID: t.ID, TableNumber: t.Number, Status: string(t.Status)})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TableHandler) Add(c *gin.Context) {
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	table, err := h.service.Add(c.Request.Context(), req.TableNumber)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, TableResponse{ID: table.ID, TableNumber: table.Number, Status: string(table.Status)})
}

func (h *TableHandler) Remove(c *gin.Context) {
	number, err := intParam(c, "number")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.service.Remove(c.Request.Context(), number); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TableHandler) SetStatus(c *gin.Context) {
	number, err := intParam(c, "number")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), number, req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
