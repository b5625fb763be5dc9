package integration

import (
	"net/http"
	"testing"

	"smartspend/internal/services"
)

func TestAuthFlow_RegisterLoginProfile(t *testing.T) {
	app := setupApp(t, services.WriteReplace)

	token, userID := app.registerUser(t, "auth@test.com", "password123")
	if token == "" || userID == "" {
		t.Fatal("expected a token and user id from registration")
	}

	loginToken := app.loginUser(t, "auth@test.com", "password123")

	rec := app.request("GET", "/api/v1/profile", "", loginToken)
	mustStatus(t, rec, http.StatusOK)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" || user["id"] != userID {
		t.Errorf("unexpected profile: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password must not be serialized")
	}
}

func TestAuthFlow_Rejections(t *testing.T) {
	app := setupApp(t, services.WriteReplace)
	app.registerUser(t, "dup@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"name":"Again","email":"dup@test.com","password":"password123"}`, "")
	mustStatus(t, rec, http.StatusConflict)

	rec = app.request("POST", "/api/v1/auth/login", `{"email":"dup@test.com","password":"wrong-pass"}`, "")
	mustStatus(t, rec, http.StatusUnauthorized)

	rec = app.request("GET", "/api/v1/budgets", "", "not-a-token")
	mustStatus(t, rec, http.StatusUnauthorized)
}
