package dto

import "time"

type OrderItemDTO struct {
	Color       string  `json:"color"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	NameToPrint *string `json:"nameToPrint,omitempty"`
}

type CreateOrderRequest struct {
	ClientName  string         `json:"clientName"`
	OrderNumber string         `json:"orderNumber"`
	Status      string         `json:"status"`
	Items       []OrderItemDTO `json:"items"`
}

// UpdateOrderRequest carries a partial update; nil fields are untouched.
type UpdateOrderRequest struct {
	ClientName  *string         `json:"clientName,omitempty"`
	OrderNumber *string         `json:"orderNumber,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Items       *[]OrderItemDTO `json:"items,omitempty"`
}

type OrderResponse struct {
	ID               string         `json:"id"`
	ClientName       string         `json:"clientName"`
	OrderNumber      string         `json:"orderNumber"`
	Status           string         `json:"status"`
	Items            []OrderItemDTO `json:"items"`
	CreatedAt        time.Time      `json:"createdAt"`
	ShippingDeadline time.Time      `json:"shippingDeadline"`
}

type ListOrdersResult struct {
	Orders       []OrderResponse `json:"orders"`
	Total        int             `json:"total"`
	NextPage     bool            `json:"nextPage"`
	PreviousPage bool            `json:"previousPage"`
}

type FailedRecordDTO struct {
	Index  int           `json:"index"`
	Reason string        `json:"reason"`
	Draft  OrderResponse `json:"draft"`
}

type ImportOrdersResult struct {
	Orders []OrderResponse   `json:"orders"`
	Failed []FailedRecordDTO `json:"failed"`
}
