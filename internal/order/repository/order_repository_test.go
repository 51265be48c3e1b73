package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printshop/internal/domain"
	apperrors "printshop/internal/errors"
	"printshop/internal/testutil"
)

const testDeadlineDays = 5

func newMockRepo(t *testing.T) (*MySQLOrderRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewMySQLOrderRepository(db, testDeadlineDays), mock
}

func draft(orderNumber string) domain.Order {
	return domain.Order{
		ClientName:  "Maria",
		OrderNumber: orderNumber,
		Status:      domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{Color: "Red", Type: "Normal", Quantity: 1},
		},
	}
}

// Unit tests (sqlmock)

func TestCreate_AssignsIDAndPersists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), "Maria", "BR-1", "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(7), "Red", "Normal", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	order, err := repo.Create(context.Background(), draft("BR-1"))
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "BR-1", order.OrderNumber)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, testDeadlineDays), order.ShippingDeadline, time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateOrderNumberIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), draft("BR-1"))
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_LoadsItems(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	orderRows := sqlmock.NewRows([]string{"pk", "id", "client_name", "order_number", "status", "created_at", "shipping_deadline"}).
		AddRow(3, "uuid-1", "Maria", "BR-1", "pending", now, now.AddDate(0, 0, 5))
	itemRows := sqlmock.NewRows([]string{"order_pk", "color", "type", "quantity", "name_to_print"}).
		AddRow(3, "Red", "Normal", 2, nil).
		AddRow(3, "Blue", "Roblox", 1, "Ana")

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("uuid-1").
		WillReturnRows(orderRows)
	mock.ExpectQuery("SELECT order_pk, color, type, quantity, name_to_print FROM order_items").
		WithArgs(int64(3)).
		WillReturnRows(itemRows)

	order, err := repo.FindByID(context.Background(), "uuid-1")
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Nil(t, order.Items[0].NameToPrint)
	require.NotNil(t, order.Items[1].NameToPrint)
	assert.Equal(t, "Ana", *order.Items[1].NameToPrint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll_StatusFilterAndPagination(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT(.+) FROM orders").
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))
	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("pending", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"pk", "id", "client_name", "order_number", "status", "created_at", "shipping_deadline"}))

	page, pageSize := 2, 10
	orders, total, err := repo.FindAll(context.Background(), domain.OrderFilter{
		Status:   domain.OrderStatusPending,
		Page:     &page,
		PageSize: &pageSize,
	})
	require.NoError(t, err)

	assert.Empty(t, orders)
	assert.Equal(t, 15, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll_DeadlineOverridesStatusFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT(.+) FROM orders").
		WithArgs(domain.OrderStatusShipped, deadline).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs(domain.OrderStatusShipped, deadline, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"pk", "id", "client_name", "order_number", "status", "created_at", "shipping_deadline"}))

	// An explicit status filter must be discarded when the deadline
	// predicate is present.
	_, _, err := repo.FindAll(context.Background(), domain.OrderFilter{
		Status:         domain.OrderStatusReady,
		DeadlineBefore: &deadline,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ReturnsFalseWhenMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM orders").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBulk_PartialFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Draft 1 inserts.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	// Draft 2 hits the unique index.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()
	// Draft 3 inserts.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	drafts := []domain.Order{draft("BR-1"), draft("BR-2"), draft("BR-3")}

	inserted, failed, err := repo.CreateBulk(context.Background(), drafts)
	require.NoError(t, err)

	assert.Len(t, inserted, 2)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.Equal(t, "BR-2", failed[0].Draft.OrderNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBulk_UnavailableAbortsBatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin().WillReturnError(mysql.ErrInvalidConn)

	_, _, err := repo.CreateBulk(context.Background(), []domain.Order{draft("BR-1")})
	require.Error(t, err)

	_, ok := apperrors.IsUnavailableError(err)
	assert.True(t, ok)
}

// Integration tests

func setupIntegrationRepo(t *testing.T) (*MySQLOrderRepository, *sql.DB) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewMySQLOrderRepository(db, testDeadlineDays), db
}

func TestOrderRepository_CreateAndFindByID(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	created, err := repo.Create(context.Background(), draft("BR-100"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "BR-100", found.OrderNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Red", found.Items[0].Color)
}

func TestOrderRepository_DuplicateOrderNumber(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	_, err := repo.Create(context.Background(), draft("BR-100"))
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), draft("BR-100"))
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestOrderRepository_UpdatePartial(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	created, err := repo.Create(context.Background(), draft("BR-100"))
	require.NoError(t, err)

	status := domain.OrderStatusReady
	updated, err := repo.Update(context.Background(), created.ID, domain.OrderPatch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusReady, updated.Status)
	assert.Equal(t, created.ClientName, updated.ClientName)
	assert.Equal(t, created.OrderNumber, updated.OrderNumber)
	require.Len(t, updated.Items, 1)
}

func TestOrderRepository_UpdateReplacesItems(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	created, err := repo.Create(context.Background(), draft("BR-100"))
	require.NoError(t, err)

	name := "Pedro"
	items := []domain.OrderItem{
		{Color: "Blue", Type: "Minecraft", Quantity: 2, NameToPrint: &name},
		{Color: "Green", Type: "Normal", Quantity: 1},
	}
	updated, err := repo.Update(context.Background(), created.ID, domain.OrderPatch{Items: &items})
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, "Blue", updated.Items[0].Color)
	require.NotNil(t, updated.Items[0].NameToPrint)
	assert.Equal(t, "Pedro", *updated.Items[0].NameToPrint)
}

func TestOrderRepository_UpdateNotFound(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	status := domain.OrderStatusReady
	_, err := repo.Update(context.Background(), "00000000-0000-0000-0000-000000000000", domain.OrderPatch{Status: &status})
	require.Error(t, err)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_DeleteCascades(t *testing.T) {
	repo, db := setupIntegrationRepo(t)

	created, err := repo.Create(context.Background(), draft("BR-100"))
	require.NoError(t, err)

	deleted, err := repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var itemCount int
	err = db.QueryRow("SELECT COUNT(*) FROM order_items").Scan(&itemCount)
	require.NoError(t, err)
	assert.Equal(t, 0, itemCount)
}

func TestOrderRepository_FindAllSearch(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	name := "Ana Clara"
	withName := draft("BR-1")
	withName.Items[0].NameToPrint = &name
	_, err := repo.Create(context.Background(), withName)
	require.NoError(t, err)

	other := draft("BR-2")
	other.ClientName = "José"
	_, err = repo.Create(context.Background(), other)
	require.NoError(t, err)

	orders, total, err := repo.FindAll(context.Background(), domain.OrderFilter{Search: "ana"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "BR-1", orders[0].OrderNumber)
}

func TestOrderRepository_FindAllPagination(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	for _, n := range []string{"BR-1", "BR-2", "BR-3"} {
		_, err := repo.Create(context.Background(), draft(n))
		require.NoError(t, err)
	}

	page, pageSize := 2, 2
	orders, total, err := repo.FindAll(context.Background(), domain.OrderFilter{Page: &page, PageSize: &pageSize})
	require.NoError(t, err)

	assert.Equal(t, 3, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "BR-3", orders[0].OrderNumber)
}

func TestOrderRepository_CountByStatus(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)

	_, err := repo.Create(context.Background(), draft("BR-1"))
	require.NoError(t, err)

	toDo := draft("BR-2")
	toDo.Status = domain.OrderStatusToDo
	_, err = repo.Create(context.Background(), toDo)
	require.NoError(t, err)

	count, err := repo.CountByStatus(context.Background(), domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
