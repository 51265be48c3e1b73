package domain

import (
	"fmt"
	"strings"

	apperrors "printshop/internal/errors"
)

// OrderPatch is a partial order update. Nil fields are left untouched; the
// items slice, when present, replaces the stored items entirely.
type OrderPatch struct {
	ClientName  *string
	OrderNumber *string
	Status      *string
	Items       *[]OrderItem
}

// ValidateOrderDraft applies the create rules to a draft and returns every
// violation found. An empty result means the draft is persistable.
func ValidateOrderDraft(o Order) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(o.ClientName) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "clientName",
			Message: "client name is required",
		})
	}

	if strings.TrimSpace(o.OrderNumber) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderNumber",
			Message: "order number is required",
		})
	}

	if o.Status == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "order status is required",
		})
	}

	if len(o.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "at least one order item is required",
		})
	}

	details = append(details, validateItems(o.Items, false)...)

	return details
}

// ValidateOrderPatch applies the update rules: only present fields are
// checked, present-but-empty values are rejected.
func ValidateOrderPatch(p OrderPatch) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if p.ClientName != nil && strings.TrimSpace(*p.ClientName) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "clientName",
			Message: "client name cannot be empty",
		})
	}

	if p.OrderNumber != nil && strings.TrimSpace(*p.OrderNumber) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderNumber",
			Message: "order number cannot be empty",
		})
	}

	if p.Status != nil && !IsValidOrderStatus(*p.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "invalid order status, must be one of: pending, to_do, design_done, ready",
		})
	}

	if p.Items != nil {
		if len(*p.Items) == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items",
				Message: "at least one order item is required",
			})
		}
		details = append(details, validateItems(*p.Items, true)...)
	}

	return details
}

func validateItems(items []OrderItem, checkNameToPrint bool) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	for idx, item := range items {
		if strings.TrimSpace(item.Color) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].color", idx),
				Message: "item color is required",
			})
		}
		if strings.TrimSpace(item.Type) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].type", idx),
				Message: "item type is required",
			})
		}
		if item.Quantity <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].quantity", idx),
				Message: "item quantity must be a positive number",
			})
		}
		if checkNameToPrint && item.NameToPrint != nil && strings.TrimSpace(*item.NameToPrint) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].nameToPrint", idx),
				Message: "item name to print cannot be empty",
			})
		}
	}

	return details
}
