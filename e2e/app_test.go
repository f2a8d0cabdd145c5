package e2e

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type expense struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	request playwright.APIRequestContext
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	// Only the HTTP client is used, so no browser download is needed.
	pw, err := playwright.Run(&playwright.RunOptions{SkipInstallBrowsers: true})
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	request, err := pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(appURL),
	})
	require.NoError(suite.T(), err, "could not create request context")
	suite.request = request
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.request != nil {
		suite.request.Dispose()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

func (suite *E2ETestSuite) login() string {
	resp, err := suite.request.Post("/api/auth/login", playwright.APIRequestContextPostOptions{
		Data: map[string]string{"username": testUser, "password": testPassword},
	})
	require.NoError(suite.T(), err, "login request failed")
	require.Equal(suite.T(), http.StatusOK, resp.Status(), "login should succeed")

	var body struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	require.NoError(suite.T(), resp.JSON(&body))
	assert.Equal(suite.T(), "Login successful", body.Message)
	require.NotEmpty(suite.T(), body.Token)
	return body.Token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func (suite *E2ETestSuite) TestAuthGate() {
	resp, err := suite.request.Get("/api/expenses")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusForbidden, resp.Status(), "no header")

	resp, err = suite.request.Get("/api/expenses", playwright.APIRequestContextGetOptions{
		Headers: authHeaders("not-a-token"),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusForbidden, resp.Status(), "malformed token")

	resp, err = suite.request.Post("/api/auth/login", playwright.APIRequestContextPostOptions{
		Data: map[string]string{"username": testUser, "password": "wrong"},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.Status())
	var body map[string]string
	require.NoError(suite.T(), resp.JSON(&body))
	assert.Equal(suite.T(), "Invalid username or password", body["error"])
}

func (suite *E2ETestSuite) TestCompleteExpenseFlow() {
	token := suite.login()
	headers := authHeaders(token)

	// Seed data adds up to 350
	resp, err := suite.request.Get("/api/expense", playwright.APIRequestContextGetOptions{Headers: headers})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusOK, resp.Status())
	var total struct {
		TotalExpense float64 `json:"totalExpense"`
	}
	require.NoError(suite.T(), resp.JSON(&total))
	assert.Equal(suite.T(), 350.0, total.TotalExpense)

	// Create
	resp, err = suite.request.Post("/api/expenses", playwright.APIRequestContextPostOptions{
		Headers: headers,
		Data:    map[string]any{"amount": 12.5, "description": "Lunch Test"},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusCreated, resp.Status())
	var created expense
	require.NoError(suite.T(), resp.JSON(&created))
	assert.Equal(suite.T(), "Lunch Test", created.Description)
	assert.Equal(suite.T(), 12.5, created.Amount)

	// Verify in list
	resp, err = suite.request.Get("/api/expenses", playwright.APIRequestContextGetOptions{Headers: headers})
	require.NoError(suite.T(), err)
	var list []expense
	require.NoError(suite.T(), resp.JSON(&list))
	assert.Contains(suite.T(), list, created)

	// Partial update keeps the description
	resp, err = suite.request.Put("/api/expenses/"+strconv.FormatInt(created.ID, 10), playwright.APIRequestContextPutOptions{
		Headers: headers,
		Data:    map[string]any{"amount": 20},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusOK, resp.Status())
	var updated expense
	require.NoError(suite.T(), resp.JSON(&updated))
	assert.Equal(suite.T(), expense{ID: created.ID, Amount: 20, Description: "Lunch Test"}, updated)

	// Delete twice
	resp, err = suite.request.Delete("/api/expenses/"+strconv.FormatInt(created.ID, 10), playwright.APIRequestContextDeleteOptions{Headers: headers})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNoContent, resp.Status())

	resp, err = suite.request.Delete("/api/expenses/"+strconv.FormatInt(created.ID, 10), playwright.APIRequestContextDeleteOptions{Headers: headers})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, resp.Status())

	// Back to the seed total
	resp, err = suite.request.Get("/api/expense", playwright.APIRequestContextGetOptions{Headers: headers})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), resp.JSON(&total))
	assert.Equal(suite.T(), 350.0, total.TotalExpense)
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
