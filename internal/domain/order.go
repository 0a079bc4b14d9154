package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a bill opened on a table. Orders are never deleted.
type Order struct {
	ID      int
	TableID int
	// TableNumber is resolved by a join; 0 once the table has been removed.
	TableNumber int
	OrderTime   time.Time
	Status      OrderStatus
}

// OrderLine is one menu item of an order.
type OrderLine struct {
	ID         int
	OrderID    int
	MenuItemID int
	Quantity   int
}

// OrderLineRequest is a (menu item, quantity) pair asked for by the caller.
type OrderLineRequest struct {
	MenuItemID int `json:"menu_item_id" validate:"gt=0"`
	Quantity   int `json:"quantity" validate:"gt=0"`
}

// NewOrder opens a received order on table at the given time.
func NewOrder(table *Table, at time.Time) *Order {
	return &Order{
		TableID:     table.ID,
		TableNumber: table.Number,
		OrderTime:   at,
		Status:      StatusReceived,
	}
}

// CanTransitionTo checks newStatus against the transition policy. Without
// strict mode any status may follow any other.
func (o *Order) CanTransitionTo(newStatus OrderStatus, strict bool) bool {
	if _, ok := orderStatusRank[newStatus]; !ok {
		return false
	}
	if !strict {
		return true
	}
	return orderStatusRank[newStatus] > orderStatusRank[o.Status]
}

// TransitionTo moves the order to newStatus if the policy allows it.
func (o *Order) TransitionTo(newStatus OrderStatus, strict bool) error {
	if _, ok := orderStatusRank[newStatus]; !ok {
		return ErrInvalidStatus
	}
	if !o.CanTransitionTo(newStatus, strict) {
		return ErrInvalidTransition
	}
	o.Status = newStatus
	return nil
}

// DetailLine is an order line joined with the current catalog entry.
type DetailLine struct {
	MenuItemID int
	Name       string
	Price      decimal.Decimal
	Quantity   int
	LineTotal  decimal.Decimal
}

// OrderDetail is an order with its priced lines. Prices are the catalog's
// current prices, so repricing an item changes the totals of past orders.
type OrderDetail struct {
	Order
	Lines []DetailLine
	Total decimal.Decimal
}

func NewOrderDetail(order Order, lines []DetailLine) *OrderDetail {
	detail := &OrderDetail{Order: order, Lines: lines, Total: decimal.Zero}
	for i := range detail.Lines {
		line := &detail.Lines[i]
		line.LineTotal = line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		detail.Total = detail.Total.Add(line.LineTotal)
	}
	return detail
}
