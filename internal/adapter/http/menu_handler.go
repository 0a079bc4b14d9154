package http

import (
	"net/http"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MenuHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewMenuHandler(service interfaces.CatalogService, logger logger.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger,
	}
}

type MenuItemRequest struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

type PriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

type MenuItemResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

var errPriceRequired = domain.ValidationError{Field: "price", Message: "price is required"}

func (h *MenuHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]MenuItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, MenuItemResponse{ID: item.ID, Name: item.Name, Price: item.Price.StringFixed(2)})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MenuHandler) Add(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.Price == nil {
		respondError(c, h.logger, errPriceRequired)
		return
	}

	id, err := h.service.Add(c.Request.Context(), interfaces.AddMenuItemCommand{Name: req.Name, Price: *req.Price})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *MenuHandler) Reprice(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.Price == nil {
		respondError(c, h.logger, errPriceRequired)
		return
	}

	if err := h.service.Reprice(c.Request.Context(), id, *req.Price); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MenuHandler) Delete(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
