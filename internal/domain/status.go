package domain

import (
	"fmt"
	"strings"
	"time"
)

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

// ParseTableStatus normalizes s and rejects anything outside the closed set.
func ParseTableStatus(s string) (TableStatus, error) {
	switch status := TableStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case TableAvailable, TableOccupied:
		return status, nil
	default:
		return "", fmt.Errorf("%w: table status %q", ErrInvalidStatus, s)
	}
}

type OrderStatus string

const (
	StatusReceived  OrderStatus = "received"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPaid      OrderStatus = "paid"
)

// orderStatusRank gives the position of each status in the kitchen-to-cashier flow.
var orderStatusRank = map[OrderStatus]int{
	StatusReceived:  0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusPaid:      3,
}

// ParseOrderStatus normalizes s and rejects anything outside the closed set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := orderStatusRank[status]; !ok {
		return "", fmt.Errorf("%w: order status %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// IsActive reports whether an order in this status still holds its table.
func (s OrderStatus) IsActive() bool {
	return s != StatusPaid
}

// StatusChange is one row of an order's status log.
type StatusChange struct {
	ID        int
	OrderID   int
	Status    OrderStatus
	ChangedAt time.Time
}
