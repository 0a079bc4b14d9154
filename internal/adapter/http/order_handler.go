package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service interfaces.LedgerService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.LedgerService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type OrderResponse struct {
	ID          int       `json:"id"`
	TableNumber int       `json:"table_number"`
	Status      string    `json:"status"`
	OrderTime   time.Time `json:"order_time"`
}

type OrderLineResponse struct {
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	LineTotal  string `json:"line_total"`
}

type OrderDetailResponse struct {
	OrderResponse
	Items []OrderLineResponse `json:"items"`
	Total string              `json:"total"`
}

type StatusChangeResponse struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Status:      string(o.Status),
		OrderTime:   o.OrderTime,
	}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var cmd interfaces.CreateOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	id, err := h.service.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": id})
}

func (h *OrderHandler) Active(c *gin.Context) {
	orders, err := h.service.ActiveOrders(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(*o))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) Detail(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := OrderDetailResponse{
		OrderResponse: toOrderResponse(detail.Order),
		Items:         make([]OrderLineResponse, 0, len(detail.Lines)),
		Total:         detail.Total.StringFixed(2),
	}
	for _, l := range detail.Lines {
		resp.Items = append(resp.Items, OrderLineResponse{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Price:      l.Price.StringFixed(2),
			Quantity:   l.Quantity,
			LineTotal:  l.LineTotal.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.AdvanceStatus(c.Request.Context(), id, req.Status, ""); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) History(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	changes, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]StatusChangeResponse, 0, len(changes))
	for _, ch := range changes {
		resp = append(resp, StatusChangeResponse{Status: string(ch.Status), ChangedAt: ch.ChangedAt})
	}
	c.JSON(http.StatusOK, resp)
}
