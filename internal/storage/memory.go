package storage

import (
	"context"
	"sync"

	"expense-api/internal/models"
)

var _ ExpenseStore = (*MemoryStore)(nil)

// MemoryStore is a slice-backed ExpenseStore guarded by a mutex.
type MemoryStore struct {
	mu       sync.Mutex
	expenses []models.Expense
	lastID   int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(_ context.Context) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

// Create assigns ids from a counter that never goes backwards, so an id
// freed by Delete is not handed out again.
func (s *MemoryStore) Create(_ context.Context, amount float64, description string) (*models.Expense, error) {
	if err := validateNew(amount, description); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	e := models.Expense{ID: s.lastID, Amount: amount, Description: description}
	s.expenses = append(s.expenses, e)
	return &e, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	e := s.expenses[i]
	return &e, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	patch.Apply(&s.expenses[i])
	e := s.expenses[i]
	return &e, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

func (s *MemoryStore) Total(_ context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, e := range s.expenses {
		total += e.Amount
	}
	return total, nil
}

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(id int64) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
