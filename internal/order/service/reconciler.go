package service

import (
	"fmt"
	"strconv"
	"strings"

	"printshop/internal/domain"
	"printshop/internal/dto"
	apperrors "printshop/internal/errors"
)

// ImportPolicy is the configurable part of the spreadsheet reconciliation.
// TypeKeywords is an ordered, closed list: the first keyword contained in the
// product name wins. DefaultColor applies to every classified item regardless
// of type until product settles on per-type colors.
type ImportPolicy struct {
	TypeKeywords []string
	FallbackType string
	DefaultColor string
}

// SpreadsheetReconciler turns raw marketplace rows into grouped order drafts.
// It never touches the store; drafts are handed to the repository afterwards.
type SpreadsheetReconciler struct {
	policy ImportPolicy
}

func NewSpreadsheetReconciler(policy ImportPolicy) *SpreadsheetReconciler {
	return &SpreadsheetReconciler{policy: policy}
}

// Reconcile groups rows by marketplace order id, preserving first-seen order.
// A row whose order id already has a draft appends its item to that draft.
// Each new draft is validated with the create rules; any invalid draft aborts
// the whole import before anything is persisted.
func (r *SpreadsheetReconciler) Reconcile(rows []dto.RawOrderRow) ([]domain.Order, error) {
	var drafts []domain.Order
	index := make(map[string]int)

	for rowNum, row := range rows {
		item := r.parseItem(row)

		if i, ok := index[row.OrderID]; ok {
			drafts[i].Items = append(drafts[i].Items, item)
			continue
		}

		draft := domain.Order{
			ClientName:  row.BuyerName,
			OrderNumber: row.OrderID,
			// Derived once from the first item; later appended items do not
			// re-trigger this.
			Status: statusFromNameToPrint(item.NameToPrint),
			Items:  []domain.OrderItem{item},
		}

		if details := domain.ValidateOrderDraft(draft); len(details) > 0 {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("invalid order data at spreadsheet row %d", rowNum+1),
				details...,
			)
		}

		index[row.OrderID] = len(drafts)
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

func (r *SpreadsheetReconciler) parseItem(row dto.RawOrderRow) domain.OrderItem {
	itemType := r.classify(row.ProductName)

	item := domain.OrderItem{
		Type:     itemType,
		Color:    r.policy.DefaultColor,
		Quantity: parseQuantity(row.Quantity),
	}

	if note := strings.TrimSpace(row.BuyerNote); note != "" {
		item.NameToPrint = &note
	}

	return item
}

func (r *SpreadsheetReconciler) classify(productName string) string {
	lower := strings.ToLower(productName)
	for _, keyword := range r.policy.TypeKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return keyword
		}
	}
	return r.policy.FallbackType
}

func statusFromNameToPrint(nameToPrint *string) string {
	if nameToPrint != nil && strings.TrimSpace(*nameToPrint) != "" {
		return domain.OrderStatusToDo
	}
	return domain.OrderStatusPending
}

// parseQuantity tolerates the float rendering excel gives whole numbers
// ("2" vs "2.0"). Anything unparsable becomes 0 and fails draft validation.
func parseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if q, err := strconv.Atoi(s); err == nil {
		return q
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
