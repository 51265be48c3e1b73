package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. It expects a MySQL
// instance on localhost:3306 with a database named 'printshop_test' and
// skips the test when none is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/printshop_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"order_items", "orders"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the order tables used by integration tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS orders (
		pk BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		id CHAR(36) NOT NULL,
		client_name VARCHAR(255) NOT NULL,
		order_number VARCHAR(255) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		shipping_deadline DATETIME NOT NULL,
		UNIQUE KEY uq_orders_id (id),
		UNIQUE KEY uq_orders_order_number (order_number),
		KEY idx_orders_status (status)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS order_items (
		pk BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		order_pk BIGINT UNSIGNED NOT NULL,
		color VARCHAR(100) NOT NULL,
		type VARCHAR(100) NOT NULL,
		quantity INT NOT NULL,
		name_to_print VARCHAR(255),
		FOREIGN KEY (order_pk) REFERENCES orders(pk) ON DELETE CASCADE,
		KEY idx_order_items_order (order_pk)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"orders", createOrdersTable},
		{"order_items", createOrderItemsTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
