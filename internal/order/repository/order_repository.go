package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"printshop/internal/domain"
	apperrors "printshop/internal/errors"
)

const orderColumns = "pk, id, client_name, order_number, status, created_at, shipping_deadline"

type MySQLOrderRepository struct {
	db           *sql.DB
	deadlineDays int
}

func NewMySQLOrderRepository(db *sql.DB, deadlineDays int) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db, deadlineDays: deadlineDays}
}

// Create assigns a fresh UUID to the draft and persists it together with its
// items in one transaction. A duplicate order number surfaces as a conflict.
func (r *MySQLOrderRepository) Create(ctx context.Context, draft domain.Order) (*domain.Order, error) {
	now := time.Now().UTC()
	order := draft
	order.ID = uuid.New().String()
	order.CreatedAt = now
	order.ShippingDeadline = now.AddDate(0, 0, r.deadlineDays)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyError("beginning transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, client_name, order_number, status, created_at, shipping_deadline) VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.ClientName, order.OrderNumber, order.Status, order.CreatedAt, order.ShippingDeadline,
	)
	if err != nil {
		return nil, classifyError("inserting order", err)
	}

	orderPK, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting last insert id: %w", err)
	}

	if err := insertItems(ctx, tx, orderPK, order.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyError("committing order", err)
	}

	return &order, nil
}

// FindAll runs the filtered query twice: once for the unpaginated match count
// and once for the requested page, then loads the items of the page's orders.
func (r *MySQLOrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	where, args := buildWhere(filter)

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, classifyError("counting orders", err)
	}

	page, pageSize := filter.EffectivePage()
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s FROM orders%s ORDER BY pk LIMIT ? OFFSET ?", orderColumns, where)
	rows, err := r.db.QueryContext(ctx, query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, 0, classifyError("querying orders", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var pks []int64
	for rows.Next() {
		order, pk, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
		pks = append(pks, pk)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating order rows: %w", err)
	}

	if err := r.loadItems(ctx, orders, pks); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM orders WHERE id = ?", orderColumns), id)

	order, pk, err := scanOrderRow(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, classifyError("querying order by id", err)
	}

	orders := []domain.Order{order}
	if err := r.loadItems(ctx, orders, []int64{pk}); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// Update merges the present patch fields into the stored order. Items, when
// present, replace the stored items entirely.
func (r *MySQLOrderRepository) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyError("beginning transaction", err)
	}
	defer tx.Rollback()

	var orderPK int64
	err = tx.QueryRowContext(ctx, "SELECT pk FROM orders WHERE id = ?", id).Scan(&orderPK)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, classifyError("querying order by id", err)
	}

	var sets []string
	var args []interface{}
	if patch.ClientName != nil {
		sets = append(sets, "client_name = ?")
		args = append(args, *patch.ClientName)
	}
	if patch.OrderNumber != nil {
		sets = append(sets, "order_number = ?")
		args = append(args, *patch.OrderNumber)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}

	if len(sets) > 0 {
		query := fmt.Sprintf("UPDATE orders SET %s WHERE pk = ?", strings.Join(sets, ", "))
		if _, err := tx.ExecContext(ctx, query, append(args, orderPK)...); err != nil {
			return nil, classifyError("updating order", err)
		}
	}

	if patch.Items != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_pk = ?", orderPK); err != nil {
			return nil, classifyError("deleting order items", err)
		}
		if err := insertItems(ctx, tx, orderPK, *patch.Items); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyError("committing order update", err)
	}

	return r.FindByID(ctx, id)
}

func (r *MySQLOrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return false, classifyError("deleting order", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CreateBulk attempts every draft independently, matching unordered batch
// insert semantics: one failed draft never aborts the rest. Failures keep
// their original batch index so the caller can retry or report precisely.
// Only an unreachable store aborts the whole batch.
func (r *MySQLOrderRepository) CreateBulk(ctx context.Context, drafts []domain.Order) ([]domain.Order, []domain.FailedRecord, error) {
	inserted := []domain.Order{}
	failed := []domain.FailedRecord{}

	for i, draft := range drafts {
		order, err := r.Create(ctx, draft)
		if err != nil {
			if _, ok := apperrors.IsUnavailableError(err); ok {
				return nil, nil, err
			}
			failed = append(failed, domain.FailedRecord{
				Index:  i,
				Reason: err.Error(),
				Draft:  draft,
			})
			continue
		}
		inserted = append(inserted, *order)
	}

	return inserted, failed, nil
}

func (r *MySQLOrderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE status = ?", status).Scan(&count)
	if err != nil {
		return 0, classifyError("counting orders by status", err)
	}
	return count, nil
}

// buildWhere composes the filter predicates. The deadline predicate takes
// precedence over an explicit status filter: when both are present, only
// "status <> shipped AND shipping_deadline < t" applies.
func buildWhere(filter domain.OrderFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.OrderNumber != "" {
		conditions = append(conditions, "order_number = ?")
		args = append(args, filter.OrderNumber)
	}
	if filter.ClientName != "" {
		conditions = append(conditions, "client_name = ?")
		args = append(args, filter.ClientName)
	}

	if filter.DeadlineBefore != nil {
		conditions = append(conditions, "status <> ?", "shipping_deadline < ?")
		args = append(args, domain.OrderStatusShipped, *filter.DeadlineBefore)
	} else if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions,
			"(LOWER(order_number) LIKE ? OR LOWER(client_name) LIKE ? OR EXISTS (SELECT 1 FROM order_items WHERE order_items.order_pk = orders.pk AND LOWER(order_items.name_to_print) LIKE ?))")
		args = append(args, pattern, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func insertItems(ctx context.Context, tx *sql.Tx, orderPK int64, items []domain.OrderItem) error {
	for _, item := range items {
		var nameToPrint sql.NullString
		if item.NameToPrint != nil {
			nameToPrint = sql.NullString{String: *item.NameToPrint, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_pk, color, type, quantity, name_to_print) VALUES (?, ?, ?, ?, ?)",
			orderPK, item.Color, item.Type, item.Quantity, nameToPrint,
		)
		if err != nil {
			return classifyError("inserting order item", err)
		}
	}
	return nil
}

func (r *MySQLOrderRepository) loadItems(ctx context.Context, orders []domain.Order, pks []int64) error {
	if len(orders) == 0 {
		return nil
	}

	placeholders := make([]string, len(pks))
	args := make([]interface{}, len(pks))
	byPK := make(map[int64]*domain.Order, len(orders))
	for i := range orders {
		placeholders[i] = "?"
		args[i] = pks[i]
		byPK[pks[i]] = &orders[i]
	}

	query := fmt.Sprintf(
		"SELECT order_pk, color, type, quantity, name_to_print FROM order_items WHERE order_pk IN (%s) ORDER BY pk",
		strings.Join(placeholders, ", "),
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return classifyError("querying order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderPK int64
		var item domain.OrderItem
		var nameToPrint sql.NullString
		if err := rows.Scan(&orderPK, &item.Color, &item.Type, &item.Quantity, &nameToPrint); err != nil {
			return fmt.Errorf("scanning order item row: %w", err)
		}
		if nameToPrint.Valid {
			item.NameToPrint = &nameToPrint.String
		}
		if order, ok := byPK[orderPK]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating order item rows: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domain.Order, int64, error) {
	var order domain.Order
	var pk int64
	err := row.Scan(&pk, &order.ID, &order.ClientName, &order.OrderNumber, &order.Status, &order.CreatedAt, &order.ShippingDeadline)
	if err != nil {
		return domain.Order{}, 0, fmt.Errorf("scanning order row: %w", err)
	}
	return order, pk, nil
}

func scanOrderRow(row *sql.Row) (domain.Order, int64, error) {
	var order domain.Order
	var pk int64
	err := row.Scan(&pk, &order.ID, &order.ClientName, &order.OrderNumber, &order.Status, &order.CreatedAt, &order.ShippingDeadline)
	if err != nil {
		return domain.Order{}, 0, err
	}
	return order, pk, nil
}

const mysqlDuplicateEntry = 1062

func classifyError(op string, err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return apperrors.NewConflictError("order number already exists")
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return apperrors.NewUnavailableError("database unreachable", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
