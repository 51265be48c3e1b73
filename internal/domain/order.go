package domain

import "time"

type Order struct {
	ID               string
	ClientName       string
	OrderNumber      string
	Status           string
	Items            []OrderItem
	CreatedAt        time.Time
	ShippingDeadline time.Time
}

type OrderItem struct {
	Color       string
	Type        string
	Quantity    int
	NameToPrint *string
}

const (
	OrderStatusPending    = "pending"
	OrderStatusToDo       = "to_do"
	OrderStatusDesignDone = "design_done"
	OrderStatusReady      = "ready"

	// OrderStatusShipped is only ever read by the deadline filter; it is not
	// accepted on create or update.
	OrderStatusShipped = "shipped"
)

func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusToDo, OrderStatusDesignDone, OrderStatusReady:
		return true
	}
	return false
}
