package domain

import "time"

// OrderFilter describes one orders query. Equality fields are ANDed when set.
// Search ORs a case-insensitive substring match across order number, client
// name and item names-to-print. DeadlineBefore overrides any Status value with
// "status != shipped AND shipping_deadline < t".
type OrderFilter struct {
	OrderNumber    string
	ClientName     string
	Status         string
	Search         string
	DeadlineBefore *time.Time
	Page           *int
	PageSize       *int
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// EffectivePage resolves the pagination actually applied by the store:
// defaults when absent, the given values otherwise.
func (f OrderFilter) EffectivePage() (page, pageSize int) {
	page = DefaultPage
	pageSize = DefaultPageSize
	if f.Page != nil && *f.Page > 0 {
		page = *f.Page
	}
	if f.PageSize != nil && *f.PageSize > 0 {
		pageSize = *f.PageSize
	}
	return page, pageSize
}
