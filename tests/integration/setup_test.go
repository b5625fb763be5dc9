package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"smartspend/internal/logger"
	"smartspend/internal/middleware"
	"smartspend/internal/router"
	"smartspend/internal/services"
	"smartspend/internal/testutil"
	"smartspend/internal/validator"
)

const testAPIKey = "integration-key"

// clock is the instant the app treats as now, so that alerts and default
// periods are computed for May 2024.
var clock = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite, using the given budget write strategy.
func setupApp(t *testing.T, strategy services.WriteStrategy) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	r, err := router.New(router.Deps{
		Users:    services.NewUserService(db),
		Expenses: services.NewExpenseService(db),
		Budgets: services.NewBudgetService(db,
			services.WithWriteStrategy(strategy),
			services.WithClock(func() time.Time { return clock }),
		),
		Audit:          services.NewAuditService(db),
		Tokens:         middleware.NewTokenManager("integration-secret", time.Hour),
		Location:       time.UTC,
		Clock:          func() time.Time { return clock },
		InternalAPIKey: testAPIKey,
	})
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	return &testApp{DB: db, Router: r}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// requestWithAPIKey makes a request carrying the internal API key.
func (app *testApp) requestWithAPIKey(method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(middleware.APIKeyHeader, key)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// mustStatus fails the test unless rec has the expected status.
func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	mustStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	mustStatus(t, rec, http.StatusOK)
	return parseJSON(t, rec)["token"].(string)
}

// addExpense records an expense and returns its ID.
func (app *testApp) addExpense(t *testing.T, token, title, category, amount, date string) string {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"category":%q,"amount":%q,"date":%q}`, title, category, amount, date)
	rec := app.request("POST", "/api/v1/expenses", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(string)
}

// setBudget stores a budget and returns the stored record.
func (app *testApp) setBudget(t *testing.T, token, body string) map[string]interface{} {
	t.Helper()
	rec := app.request("POST", "/api/v1/budgets", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return parseJSON(t, rec)["budget"].(map[string]interface{})
}
