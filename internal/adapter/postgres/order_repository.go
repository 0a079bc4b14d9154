package postgres

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type orderRepository struct {
	q Querier
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	err := r.q.QueryRow(ctx, queryInsertOrder, order.TableID, order.OrderTime, order.Status).Scan(&order.ID)
	return mapError("insert order", err, nil)
}

func (r *orderRepository) AddLine(ctx context.Context, line *domain.OrderLine) error {
	err := r.q.QueryRow(ctx, queryInsertOrderDetail, line.OrderID, line.MenuItemID, line.Quantity).Scan(&line.ID)
	return mapError("insert order detail", err, nil)
}

func scanOrder(row Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(&order.ID, &order.TableID, &order.TableNumber, &order.OrderTime, &order.Status)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	order, err := scanOrder(r.q.QueryRow(ctx, querySelectOrderByID, id))
	if err != nil {
		return nil, mapError("select order", err, domain.ErrOrderNotFound)
	}
	return order, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id int) (*domain.Order, error) {
	order, err := scanOrder(r.q.QueryRow(ctx, queryLockOrderByID, id))
	if err != nil {
		return nil, mapError("lock order", err, domain.ErrOrderNotFound)
	}
	return order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int, status domain.OrderStatus) error {
	tag, err := r.q.Exec(ctx, queryUpdateOrderStatus, id, status)
	if err != nil {
		return mapError("update order status", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) CountActiveByTable(ctx context.Context, tableID, excludeOrderID int) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, queryCountActiveOrdersByTable, tableID, excludeOrderID).Scan(&count); err != nil {
		return 0, mapError("count active orders", err, nil)
	}
	return count, nil
}

func (r *orderRepository) ListActive(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.q.Query(ctx, querySelectActiveOrders)
	if err != nil {
		return nil, mapError("list active orders", err, nil)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, mapError("scan order", err, nil)
		}
		orders = append(orders, order)
	}
	return orders, mapError("list active orders", rows.Err(), nil)
}

func (r *orderRepository) Lines(ctx context.Context, orderID int) ([]domain.DetailLine, error) {
	rows, err := r.q.Query(ctx, querySelectOrderLines, orderID)
	if err != nil {
		return nil, mapError("select order lines", err, nil)
	}
	defer rows.Close()

	var lines []domain.DetailLine
	for rows.Next() {
		var line domain.DetailLine
		if err := rows.Scan(&line.MenuItemID, &line.Name, &line.Price, &line.Quantity); err != nil {
			return nil, mapError("scan order line", err, nil)
		}
		lines = append(lines, line)
	}
	return lines, mapError("select order lines", rows.Err(), nil)
}

func (r *orderRepository) LogStatus(ctx context.Context, orderID int, status domain.OrderStatus, at time.Time) error {
	_, err := r.q.Exec(ctx, queryInsertStatusLog, orderID, status, at)
	return mapError("insert status log", err, nil)
}

func (r *orderRepository) StatusHistory(ctx context.Context, orderID int) ([]*domain.StatusChange, error) {
	rows, err := r.q.Query(ctx, querySelectStatusLog, orderID)
	if err != nil {
		return nil, mapError("select status log", err, nil)
	}
	defer rows.Close()

	var changes []*domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(&change.ID, &change.OrderID, &change.Status, &change.ChangedAt); err != nil {
			return nil, mapError("scan status log", err, nil)
		}
		changes = append(changes, &change)
	}
	return changes, mapError("select status log", rows.Err(), nil)
}
