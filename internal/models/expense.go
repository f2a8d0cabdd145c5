package models

// Expense represents a financial expense record.
type Expense struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// ExpensePatch carries a partial update. Zero values mean "leave unchanged".
type ExpensePatch struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Apply copies the non-zero fields of the patch onto e.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Amount != 0 {
		e.Amount = p.Amount
	}
	if p.Description != "" {
		e.Description = p.Description
	}
}

// User is the identity carried by an authenticated request.
type User struct {
	Username string `json:"username"`
}
