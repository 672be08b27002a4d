package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestApp builds the full route surface against an in-memory SQLite
// database, without Redis. Middleware that registers global Prometheus
// collectors is left out so tests can build apps independently.
func newTestApp(t *testing.T) (*fiber.App, *Server) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		Port:            "0",
		JWTSecret:       "server-test-secret-0123456789abcdef",
		TokenTTLMinutes: 70,
		Env:             "test",
		AllowedOrigins:  "*",
	}

	srv := New(cfg, db, nil)
	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv
}

func jsonReq(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request, out interface{}) int {
	t.Helper()

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, app *fiber.App, username, password string) models.User {
	t.Helper()

	var user models.User
	status := doJSON(t, app, jsonReq(t, http.MethodPost, "/register", map[string]string{
		"username": username,
		"password": password,
	}), &user)
	if status != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d", username, status)
	}
	if user.ID == 0 {
		t.Fatalf("register %s: missing user ID in response", username)
	}
	return user
}

func loginUser(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()

	var resp TokenResponse
	status := doJSON(t, app, jsonReq(t, http.MethodPost, "/token", map[string]string{
		"username": username,
		"password": password,
	}), &resp)
	if status != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, status)
	}
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("login %s: unexpected token response %+v", username, resp)
	}
	return resp.AccessToken
}

func authReq(t *testing.T, method, target, token string, payload interface{}) *http.Request {
	t.Helper()
	req := jsonReq(t, method, target, payload)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func createPost(t *testing.T, app *fiber.App, token, title, content string) models.Post {
	t.Helper()

	var post models.Post
	status := doJSON(t, app, authReq(t, http.MethodPost, "/posts", token, map[string]string{
		"title":   title,
		"content": content,
	}), &post)
	if status != http.StatusOK {
		t.Fatalf("create post: expected 200, got %d", status)
	}
	return post
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp(t)

	var body map[string]string
	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/healthz", nil), &body)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["database"] != "ok" {
		t.Fatalf("expected database ok, got %q", body["database"])
	}
	if body["redis"] != "disabled" {
		t.Fatalf("expected redis disabled, got %q", body["redis"])
	}
}
