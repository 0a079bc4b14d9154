package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/shopspring/decimal"
)

// Команды для сервисов
type AddMenuItemCommand struct {
	Name  string          `json:"name" validate:"required,max=100"`
	Price decimal.Decimal `json:"price"`
}

type CreateOrderCommand struct {
	TableNumber int                       `json:"table_number" validate:"gt=0"`
	Items       []domain.OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

// Интерфейсы Сервисов (Business Logic)
type CatalogService interface {
	Add(ctx context.Context, cmd AddMenuItemCommand) (int, error)
	Reprice(ctx context.Context, itemID int, price decimal.Decimal) error
	Delete(ctx context.Context, itemID int) error
	List(ctx context.Context) ([]*domain.MenuItem, error)
}

type FloorPlanService interface {
	Add(ctx context.Context, tableNumber int) (*domain.Table, error)
	Remove(ctx context.Context, tableNumber int) error
	SetStatus(ctx context.Context, tableNumber int, status string) error
	List(ctx context.Context) ([]*domain.Table, error)
}

type LedgerService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (int, error)
	AdvanceStatus(ctx context.Context, orderID int, status string, changedBy string) error
	AdvanceStatusFrom(ctx context.Context, orderID int, from domain.OrderStatus, status string, changedBy string) error
	Detail(ctx context.Context, orderID int) (*domain.OrderDetail, error)
	ActiveOrders(ctx context.Context) ([]*domain.Order, error)
	History(ctx context.Context, orderID int) ([]*domain.StatusChange, error)
}

type SalesService interface {
	DailyReport(ctx context.Context, day time.Time) (*domain.DailyReport, error)
}

type KitchenService interface {
	ProcessOrder(ctx context.Context, msg OrderPlacedMessage) error
}
