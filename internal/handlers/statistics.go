package handlers

import (
	"net/http"
)

type totalResponse struct {
	TotalExpense float64 `json:"totalExpense"`
}

// TotalExpense returns the sum of all expense amounts.
func (h *Handlers) TotalExpense(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.Total(r.Context())
	if err != nil {
		h.internalError(w, r, "total expense", err)
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{TotalExpense: total})
}
