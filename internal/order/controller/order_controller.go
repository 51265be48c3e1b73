package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"printshop/internal/domain"
	"printshop/internal/dto"
	apperrors "printshop/internal/errors"
)

const maxUploadSize = 10 << 20 // 10 MiB, matching the marketplace export cap

type OrderUseCase interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetAllOrders(ctx context.Context, filter domain.OrderFilter) (*dto.ListOrdersResult, error)
	GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error)
	UpdateOrder(ctx context.Context, id string, req dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	DeleteOrder(ctx context.Context, id string) error
	ImportOrders(ctx context.Context, rows []dto.RawOrderRow) (*dto.ImportOrdersResult, error)
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

type envelope struct {
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	StatusCode int         `json:"statusCode"`
}

type listEnvelope struct {
	Message      string      `json:"message"`
	Data         interface{} `json:"data"`
	Total        int         `json:"total"`
	NextPage     bool        `json:"nextPage"`
	PreviousPage bool        `json:"previousPage"`
	StatusCode   int         `json:"statusCode"`
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, envelope{
		Message:    "Order created",
		Data:       order,
		StatusCode: http.StatusCreated,
	})
}

func (c *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	filter, err := filterFromQuery(r)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	result, err := c.useCase.GetAllOrders(r.Context(), filter)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, listEnvelope{
		Message:      "Orders retrieved",
		Data:         map[string]interface{}{"orders": result.Orders},
		Total:        result.Total,
		NextPage:     result.NextPage,
		PreviousPage: result.PreviousPage,
		StatusCode:   http.StatusOK,
	})
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	order, err := c.useCase.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, envelope{
		Message:    "Order details",
		Data:       order,
		StatusCode: http.StatusOK,
	})
}

func (c *OrderController) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	var req dto.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.UpdateOrder(r.Context(), chi.URLParam(r, "orderId"), req)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, envelope{
		Message:    "Order updated",
		Data:       order,
		StatusCode: http.StatusOK,
	})
}

func (c *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	if err := c.useCase.DeleteOrder(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, envelope{
		Message:    "Order deleted",
		Data:       true,
		StatusCode: http.StatusOK,
	})
}

func (c *OrderController) ImportOrders(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("missing upload file", zap.Error(err))
		c.writeValidationError(w, "no file uploaded", apperrors.ValidationDetail{
			Field:   "file",
			Message: "a spreadsheet file is required",
		})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		c.writeValidationError(w, "unsupported file type", apperrors.ValidationDetail{
			Field:   "file",
			Message: "only .xlsx or .xls files are allowed",
		})
		return
	}

	rows, err := ParseOrderRows(file)
	if err != nil {
		logger.Warn("failed to parse spreadsheet", zap.Error(err))
		c.writeValidationError(w, "could not read spreadsheet", apperrors.ValidationDetail{
			Field:   "file",
			Message: err.Error(),
		})
		return
	}

	result, err := c.useCase.ImportOrders(r.Context(), rows)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, envelope{
		Message:    "Orders imported",
		Data:       result,
		StatusCode: http.StatusCreated,
	})
}

func filterFromQuery(r *http.Request) (domain.OrderFilter, error) {
	q := r.URL.Query()

	filter := domain.OrderFilter{
		OrderNumber: q.Get("orderNumber"),
		ClientName:  q.Get("clientName"),
		Status:      q.Get("status"),
		Search:      q.Get("search"),
	}

	var details []apperrors.ValidationDetail

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "page",
				Message: "page must be a positive number",
			})
		} else {
			filter.Page = &page
		}
	}

	if raw := q.Get("pageSize"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "pageSize",
				Message: "page size must be a positive number",
			})
		} else {
			filter.PageSize = &pageSize
		}
	}

	if raw := q.Get("deadlineBefore"); raw != "" {
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "deadlineBefore",
				Message: "deadlineBefore must be an RFC 3339 timestamp",
			})
		} else {
			filter.DeadlineBefore = &deadline
		}
	}

	if len(details) > 0 {
		return domain.OrderFilter{}, apperrors.NewValidationError("invalid query parameters", details...)
	}

	return filter, nil
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsUnavailableError(err); ok {
		logger.Error("store unavailable", zap.Error(err))
		c.writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database is unavailable")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type errorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

type validationErrorResponse struct {
	Error      string                       `json:"error"`
	Message    string                       `json:"message"`
	Details    []apperrors.ValidationDetail `json:"details"`
	StatusCode int                          `json:"statusCode"`
}

func (c *OrderController) writeError(w http.ResponseWriter, status int, code, message string) {
	c.writeJSON(w, status, errorResponse{
		Error:      code,
		Message:    message,
		StatusCode: status,
	})
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:      "VALIDATION_ERROR",
		Message:    message,
		Details:    details,
		StatusCode: http.StatusBadRequest,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (c *OrderController) requestLogger(r *http.Request) *zap.Logger {
	return c.logger.With(
		zap.String("traceId", uuid.New().String()),
		zap.String("path", r.URL.Path),
	)
}
