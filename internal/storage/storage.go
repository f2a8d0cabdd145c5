// Package storage keeps expense records in process memory.
package storage

import (
	"context"
	"errors"
	"fmt"

	"expense-api/internal/models"
)

var (
	// ErrNotFound is returned when no expense has the requested id.
	ErrNotFound = errors.New("expense not found")
	// ErrValidation is returned when a new expense lacks amount or description.
	ErrValidation = errors.New("amount and description are required")
)

// ExpenseStore is an ordered collection of expenses.
type ExpenseStore interface {
	// List returns every expense in insertion order.
	List(ctx context.Context) ([]models.Expense, error)
	// Create appends a new expense and assigns its id.
	Create(ctx context.Context, amount float64, description string) (*models.Expense, error)
	// Get returns the expense with id.
	Get(ctx context.Context, id int64) (*models.Expense, error)
	// Update applies patch to the expense with id and returns the result.
	Update(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error)
	// Delete removes the expense with id.
	Delete(ctx context.Context, id int64) error
	// Total sums the amount of every expense.
	Total(ctx context.Context) (float64, error)
}

// DefaultSeed is the data a fresh server starts with.
var DefaultSeed = []models.Expense{
	{Amount: 100, Description: "Groceries"},
	{Amount: 50, Description: "Transport"},
	{Amount: 200, Description: "Rent"},
}

// Seed creates each expense in order. Ids on the input are ignored.
func Seed(ctx context.Context, s ExpenseStore, expenses []models.Expense) error {
	for _, e := range expenses {
		if _, err := s.Create(ctx, e.Amount, e.Description); err != nil {
			return fmt.Errorf("seed %q: %w", e.Description, err)
		}
	}
	return nil
}

// validateNew rejects a zero amount the same way as a missing one.
func validateNew(amount float64, description string) error {
	if amount == 0 || description == "" {
		return ErrValidation
	}
	return nil
}
