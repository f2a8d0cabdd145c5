package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expense-api/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

var _ ExpenseStore = (*DB)(nil)

// DB is an ExpenseStore backed by an in-memory sqlite database.
type DB struct {
	conn *sql.DB
}

// NewDB opens a private in-memory database and creates the schema.
// Nothing is written to disk; the data goes away with the process.
func NewDB() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	// Every new connection to :memory: is a separate, empty database.
	// One connection also serializes writers.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		amount REAL NOT NULL,
		description TEXT NOT NULL
	)`)
	return err
}

// List retrieves all expenses ordered by id, which is insertion order.
func (db *DB) List(ctx context.Context) ([]models.Expense, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT id, amount, description FROM expenses ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Description); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// Create inserts a new expense. AUTOINCREMENT keeps ids from being reused
// after a delete.
func (db *DB) Create(ctx context.Context, amount float64, description string) (*models.Expense, error) {
	if err := validateNew(amount, description); err != nil {
		return nil, err
	}

	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO expenses (amount, description) VALUES (?, ?)",
		amount, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Expense{ID: id, Amount: amount, Description: description}, nil
}

// Get retrieves a single expense by ID.
func (db *DB) Get(ctx context.Context, id int64) (*models.Expense, error) {
	return scanExpense(db.conn.QueryRowContext(ctx,
		"SELECT id, amount, description FROM expenses WHERE id = ?", id))
}

// Update applies patch inside a transaction so the read and write see the
// same row.
func (db *DB) Update(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	e, err := scanExpense(tx.QueryRowContext(ctx,
		"SELECT id, amount, description FROM expenses WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	patch.Apply(e)
	if _, err := tx.ExecContext(ctx,
		"UPDATE expenses SET amount = ?, description = ? WHERE id = ?",
		e.Amount, e.Description, e.ID,
	); err != nil {
		return nil, fmt.Errorf("update expense %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an expense by ID.
func (db *DB) Delete(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Total returns the sum of all amounts.
func (db *DB) Total(ctx context.Context) (float64, error) {
	var total float64
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount), 0) FROM expenses").Scan(&total)
	return total, err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func scanExpense(row *sql.Row) (*models.Expense, error) {
	var e models.Expense
	if err := row.Scan(&e.ID, &e.Amount, &e.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
