package memory

import (
	"context"
	"sort"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/shopspring/decimal"
)

type orderRepository struct {
	binding
}

// withTableNumber resolves the table join; removed tables read as number 0.
func withTableNumber(st *state, order domain.Order) *domain.Order {
	order.TableNumber = 0
	if table, ok := st.tables[order.TableID]; ok {
		order.TableNumber = table.Number
	}
	return &order
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.do(ctx, func(st *state) error {
		if _, ok := st.tables[order.TableID]; !ok {
			return domain.ErrTableNotFound
		}
		order.ID = st.seq("orders")
		st.orders[order.ID] = *order
		return nil
	})
}

func (r *orderRepository) AddLine(ctx context.Context, line *domain.OrderLine) error {
	return r.do(ctx, func(st *state) error {
		if _, ok := st.orders[line.OrderID]; !ok {
			return domain.ErrOrderNotFound
		}
		if _, ok := st.menu[line.MenuItemID]; !ok {
			return domain.ErrMenuItemNotFound
		}
		line.ID = st.seq("order_details")
		st.lines = append(st.lines, *line)
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	var order *domain.Order
	err := r.do(ctx, func(st *state) error {
		found, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		order = withTableNumber(st, found)
		return nil
	})
	return order, err
}

func (r *orderRepository) LockByID(ctx context.Context, id int) (*domain.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int, status domain.OrderStatus) error {
	return r.do(ctx, func(st *state) error {
		order, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		order.Status = status
		st.orders[id] = order
		return nil
	})
}

func (r *orderRepository) CountActiveByTable(ctx context.Context, tableID, excludeOrderID int) (int, error) {
	var count int
	err := r.do(ctx, func(st *state) error {
		for _, order := range st.orders {
			if order.TableID == tableID && order.ID != excludeOrderID && order.Status.IsActive() {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *orderRepository) ListActive(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.do(ctx, func(st *state) error {
		for _, order := range st.orders {
			if order.Status.IsActive() {
				orders = append(orders, withTableNumber(st, order))
			}
		}
		return nil
	})
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].OrderTime.Equal(orders[j].OrderTime) {
			return orders[i].OrderTime.Before(orders[j].OrderTime)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders, err
}

func (r *orderRepository) Lines(ctx context.Context, orderID int) ([]domain.DetailLine, error) {
	var lines []domain.DetailLine
	err := r.do(ctx, func(st *state) error {
		for _, line := range st.lines {
			if line.OrderID != orderID {
				continue
			}
			item := st.menu[line.MenuItemID]
			lines = append(lines, domain.DetailLine{
				MenuItemID: line.MenuItemID,
				Name:       item.Name,
				Price:      item.Price,
				Quantity:   line.Quantity,
			})
		}
		return nil
	})
	return lines, err
}

func (r *orderRepository) LogStatus(ctx context.Context, orderID int, status domain.OrderStatus, at time.Time) error {
	return r.do(ctx, func(st *state) error {
		st.history = append(st.history, domain.StatusChange{
			ID:        st.seq("order_status_log"),
			OrderID:   orderID,
			Status:    status,
			ChangedAt: at,
		})
		return nil
	})
}

func (r *orderRepository) StatusHistory(ctx context.Context, orderID int) ([]*domain.StatusChange, error) {
	var changes []*domain.StatusChange
	err := r.do(ctx, func(st *state) error {
		for _, change := range st.history {
			if change.OrderID == orderID {
				change := change
				changes = append(changes, &change)
			}
		}
		return nil
	})
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].ChangedAt.Before(changes[j].ChangedAt) })
	return changes, err
}

type reportRepository struct {
	binding
}

func (r *reportRepository) SalesBetween(ctx context.Context, from, to time.Time) (domain.SalesTotals, error) {
	totals := domain.SalesTotals{TotalSales: decimal.Zero}
	err := r.do(ctx, func(st *state) error {
		paid := make(map[int]bool)
		for _, order := range st.orders {
			if order.OrderTime.Before(from) || !order.OrderTime.Before(to) {
				continue
			}
			if order.Status == domain.StatusPaid {
				totals.PaidOrders++
				paid[order.ID] = true
			} else {
				totals.UnpaidOrders++
			}
		}
		for _, line := range st.lines {
			if !paid[line.OrderID] {
				continue
			}
			price := st.menu[line.MenuItemID].Price
			totals.TotalSales = totals.TotalSales.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		return nil
	})
	return totals, err
}
