package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, srv := newTestApp(t)

	user := registerUser(t, app, "alice", "pw1")
	assert.Equal(t, "alice", user.Username)

	// The stored password must be a hash, and the response must not carry it.
	var stored models.User
	require.NoError(t, srv.DB().First(&stored, user.ID).Error)
	assert.NotEqual(t, "pw1", stored.Password)
	assert.NotEmpty(t, stored.Password)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "alice", "pw1")

	var body models.ErrorResponse
	status := doJSON(t, app, jsonReq(t, http.MethodPost, "/register", map[string]string{
		"username": "alice",
		"password": "different",
	}), &body)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username already registered", body.Error)
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "pw1"},
		{"invalid characters", "al ice", "pw1"},
		{"empty password", "alice", ""},
		// Over bcrypt's 72-byte input limit: must be a 400 from validation,
		// not a 500 from the hasher.
		{"oversized password", "alice", strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := doJSON(t, app, jsonReq(t, http.MethodPost, "/register", map[string]string{
				"username": tt.username,
				"password": tt.password,
			}), nil)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestToken(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "alice", "pw1")

	token := loginUser(t, app, "alice", "pw1")
	assert.NotEmpty(t, token)
}

func TestTokenAcceptsFormEncoding(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "alice", "pw1")

	form := url.Values{"username": {"alice"}, "password": {"pw1"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp TokenResponse
	status := doJSON(t, app, req, &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bearer", resp.TokenType)
}

// TestTokenRejectsUniformly checks that a wrong password and an unknown
// username produce byte-identical failures, so login cannot be used to
// probe which usernames exist.
func TestTokenRejectsUniformly(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "alice", "pw1")

	var wrongPw models.ErrorResponse
	statusWrongPw := doJSON(t, app, jsonReq(t, http.MethodPost, "/token", map[string]string{
		"username": "alice",
		"password": "pw2",
	}), &wrongPw)

	var unknown models.ErrorResponse
	statusUnknown := doJSON(t, app, jsonReq(t, http.MethodPost, "/token", map[string]string{
		"username": "mallory",
		"password": "pw1",
	}), &unknown)

	assert.Equal(t, http.StatusUnauthorized, statusWrongPw)
	assert.Equal(t, http.StatusUnauthorized, statusUnknown)
	assert.Equal(t, wrongPw, unknown)
}

func TestTokenMissingFields(t *testing.T) {
	app, _ := newTestApp(t)

	status := doJSON(t, app, jsonReq(t, http.MethodPost, "/token", map[string]string{
		"username": "alice",
	}), nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
