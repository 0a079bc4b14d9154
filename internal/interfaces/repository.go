package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/shopspring/decimal"
)

// Интерфейсы Репозиториев (Adapter/Postgres, Adapter/Memory)
type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	FindByID(ctx context.Context, id int) (*domain.MenuItem, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*domain.MenuItem, error)
	UpdatePrice(ctx context.Context, id int, price decimal.Decimal) error
	Delete(ctx context.Context, id int) error
	CountReferences(ctx context.Context, id int) (int, error)
	List(ctx context.Context) ([]*domain.MenuItem, error)
}

type TableRepository interface {
	Create(ctx context.Context, table *domain.Table) error
	FindByNumber(ctx context.Context, number int) (*domain.Table, error)
	// LockByNumber reads the table and holds its row lock until the
	// surrounding transaction ends.
	LockByNumber(ctx context.Context, number int) (*domain.Table, error)
	LockByID(ctx context.Context, id int) (*domain.Table, error)
	SetStatus(ctx context.Context, id int, status domain.TableStatus) error
	// Occupy flips an available table to occupied and fails with
	// domain.ErrTableOccupied when the table is not available anymore.
	Occupy(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*domain.Table, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	AddLine(ctx context.Context, line *domain.OrderLine) error
	FindByID(ctx context.Context, id int) (*domain.Order, error)
	LockByID(ctx context.Context, id int) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int, status domain.OrderStatus) error
	// CountActiveByTable counts non-paid orders on the table, ignoring excludeOrderID.
	CountActiveByTable(ctx context.Context, tableID, excludeOrderID int) (int, error)
	ListActive(ctx context.Context) ([]*domain.Order, error)
	// Lines joins the order's line items with current catalog prices.
	Lines(ctx context.Context, orderID int) ([]domain.DetailLine, error)
	LogStatus(ctx context.Context, orderID int, status domain.OrderStatus, at time.Time) error
	StatusHistory(ctx context.Context, orderID int) ([]*domain.StatusChange, error)
}

type ReportRepository interface {
	// SalesBetween aggregates orders with order_time in [from, to).
	SalesBetween(ctx context.Context, from, to time.Time) (domain.SalesTotals, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Menu    MenuRepository
	Tables  TableRepository
	Orders  OrderRepository
	Reports ReportRepository
}

// Store hands out repositories and runs units of work. WithinTx commits when
// fn returns nil and rolls back on error or panic.
type Store interface {
	Repositories() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}
