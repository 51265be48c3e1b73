package usecase

import (
	"context"

	"go.uber.org/zap"

	"printshop/internal/domain"
	"printshop/internal/dto"
	apperrors "printshop/internal/errors"
)

type OrderRepository interface {
	Create(ctx context.Context, draft domain.Order) (*domain.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error)
	Delete(ctx context.Context, id string) (bool, error)
	CreateBulk(ctx context.Context, drafts []domain.Order) ([]domain.Order, []domain.FailedRecord, error)
}

type Reconciler interface {
	Reconcile(rows []dto.RawOrderRow) ([]domain.Order, error)
}

// OrderUseCase is the single entry point the HTTP layer talks to. It owns
// validation and response shaping; persistence belongs to the repository.
type OrderUseCase struct {
	repo       OrderRepository
	reconciler Reconciler
	logger     *zap.Logger
}

func NewOrderUseCase(repo OrderRepository, reconciler Reconciler, logger *zap.Logger) *OrderUseCase {
	return &OrderUseCase{
		repo:       repo,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (uc *OrderUseCase) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	draft := draftFromRequest(req)

	if details := domain.ValidateOrderDraft(draft); len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	order, err := uc.repo.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	resp := toOrderResponse(*order)
	return &resp, nil
}

func (uc *OrderUseCase) GetAllOrders(ctx context.Context, filter domain.OrderFilter) (*dto.ListOrdersResult, error) {
	if details := validatePagination(filter); len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	orders, total, err := uc.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	// nextPage is only meaningful when the caller paginated explicitly.
	nextPage := false
	if filter.Page != nil && filter.PageSize != nil {
		nextPage = (*filter.Page)*(*filter.PageSize) < total
	}
	previousPage := filter.Page != nil && *filter.Page > 1

	result := &dto.ListOrdersResult{
		Orders:       make([]dto.OrderResponse, 0, len(orders)),
		Total:        total,
		NextPage:     nextPage,
		PreviousPage: previousPage,
	}
	for _, order := range orders {
		result.Orders = append(result.Orders, toOrderResponse(order))
	}

	return result, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toOrderResponse(*order)
	return &resp, nil
}

func (uc *OrderUseCase) UpdateOrder(ctx context.Context, id string, req dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	patch := patchFromRequest(req)

	if details := domain.ValidateOrderPatch(patch); len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	order, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	resp := toOrderResponse(*order)
	return &resp, nil
}

func (uc *OrderUseCase) DeleteOrder(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("order with id " + id + " not found")
	}
	return nil
}

// ImportOrders reconciles the spreadsheet rows into drafts and bulk-inserts
// them. Validation failures reject the whole batch before any write;
// per-record persistence failures are logged and returned, never fatal.
func (uc *OrderUseCase) ImportOrders(ctx context.Context, rows []dto.RawOrderRow) (*dto.ImportOrdersResult, error) {
	drafts, err := uc.reconciler.Reconcile(rows)
	if err != nil {
		return nil, err
	}

	inserted, failed, err := uc.repo.CreateBulk(ctx, drafts)
	if err != nil {
		return nil, err
	}

	if len(failed) > 0 {
		uc.logger.Warn("some orders failed to be created",
			zap.Int("failedCount", len(failed)),
			zap.Int("insertedCount", len(inserted)),
		)
	}

	result := &dto.ImportOrdersResult{
		Orders: make([]dto.OrderResponse, 0, len(inserted)),
		Failed: make([]dto.FailedRecordDTO, 0, len(failed)),
	}
	for _, order := range inserted {
		result.Orders = append(result.Orders, toOrderResponse(order))
	}
	for _, record := range failed {
		result.Failed = append(result.Failed, dto.FailedRecordDTO{
			Index:  record.Index,
			Reason: record.Reason,
			Draft:  toOrderResponse(record.Draft),
		})
	}

	return result, nil
}

func validatePagination(filter domain.OrderFilter) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	if filter.Page != nil && *filter.Page <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if filter.PageSize != nil && *filter.PageSize <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "pageSize",
			Message: "page size must be a positive number",
		})
	}
	return details
}

func draftFromRequest(req dto.CreateOrderRequest) domain.Order {
	return domain.Order{
		ClientName:  req.ClientName,
		OrderNumber: req.OrderNumber,
		Status:      req.Status,
		Items:       itemsFromDTO(req.Items),
	}
}

func patchFromRequest(req dto.UpdateOrderRequest) domain.OrderPatch {
	patch := domain.OrderPatch{
		ClientName:  req.ClientName,
		OrderNumber: req.OrderNumber,
		Status:      req.Status,
	}
	if req.Items != nil {
		items := itemsFromDTO(*req.Items)
		patch.Items = &items
	}
	return patch
}

func itemsFromDTO(items []dto.OrderItemDTO) []domain.OrderItem {
	result := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		result = append(result, domain.OrderItem{
			Color:       item.Color,
			Type:        item.Type,
			Quantity:    item.Quantity,
			NameToPrint: item.NameToPrint,
		})
	}
	return result
}

func toOrderResponse(order domain.Order) dto.OrderResponse {
	items := make([]dto.OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemDTO{
			Color:       item.Color,
			Type:        item.Type,
			Quantity:    item.Quantity,
			NameToPrint: item.NameToPrint,
		})
	}
	return dto.OrderResponse{
		ID:               order.ID,
		ClientName:       order.ClientName,
		OrderNumber:      order.OrderNumber,
		Status:           order.Status,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		ShippingDeadline: order.ShippingDeadline,
	}
}
