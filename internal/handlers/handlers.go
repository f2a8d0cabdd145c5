package handlers

import (
	"context"
	"errors"
	"expense-api/internal/auth"
	"expense-api/internal/models"
	"expense-api/internal/storage"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Context key type to avoid collisions.
type contextKey string

// UserContextKey is the context key for the authenticated user.
const UserContextKey contextKey = "user"

// Error messages returned to clients.
const (
	msgAccessDenied       = "Access denied"
	msgInvalidToken       = "Invalid token"
	msgInvalidCredentials = "Invalid username or password"
	msgLoginRequired      = "Username and password are required"
	msgExpenseRequired    = "Amount and description are required"
	msgExpenseNotFound    = "Expense not found"
	msgInvalidJSON        = "Invalid JSON body"
	msgInternal           = "Internal server error"
)

// Authenticator checks a username and password.
type Authenticator interface {
	Verify(username, password string) bool
}

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(username string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store  storage.ExpenseStore
	creds  Authenticator
	tokens TokenIssuer
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store storage.ExpenseStore, creds Authenticator, tokens TokenIssuer, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, creds: creds, tokens: tokens, logger: logger}
}

// UserFromContext retrieves the authenticated user from a request context.
func UserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware admits a request only when it carries a valid
// "Authorization: Bearer <token>" header. Failures are final: 403 and the
// client has to log in again.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusForbidden, msgAccessDenied)
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			writeError(w, http.StatusForbidden, msgInvalidToken)
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			h.logger.DebugContext(r.Context(), "token rejected", "error", err)
			writeError(w, http.StatusForbidden, msgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, &models.User{Username: claims.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken splits "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Login checks the credentials and returns a bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, msgLoginRequired)
		return
	}

	// Same message for both failure modes so callers cannot probe usernames.
	if !h.creds.Verify(req.Username, req.Password) {
		h.logger.InfoContext(r.Context(), "login failed", "username", req.Username)
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := h.tokens.Issue(req.Username)
	if err != nil {
		h.internalError(w, r, "issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token})
}

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// ListExpenses returns every expense in insertion order.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// CreateExpense handles the creation of a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	expense, err := h.store.Create(r.Context(), req.Amount, req.Description)
	if err != nil {
		h.storeError(w, r, "create expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// UpdateExpense applies a partial update to an existing expense.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	expense, err := h.store.Update(r.Context(), id, models.ExpensePatch{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		h.storeError(w, r, "update expense", err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// DeleteExpense removes an expense.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.storeError(w, r, "delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// expenseID reads the {id} path segment. A non-numeric id cannot match any
// expense, so callers answer 404.
func expenseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (h *Handlers) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, msgExpenseNotFound)
	case errors.Is(err, storage.ErrValidation):
		writeError(w, http.StatusBadRequest, msgExpenseRequired)
	default:
		h.internalError(w, r, op, err)
	}
}

func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op+" failed", "error", err, "request_id", r.Header.Get(RequestIDHeader))
	writeError(w, http.StatusInternalServerError, msgInternal)
}
