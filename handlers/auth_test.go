package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"nursery_app_backend/middleware"
)

func loginRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(db, []byte("test-secret"))
	r.POST("/login", h.Login)
	return r, mock
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginNormalizesEmail(t *testing.T) {
	r, mock := loginRouter(t)

	hash, err := middleware.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	// The account was stored lowercased at intake; a mixed-case login
	// must still find it.
	mock.ExpectQuery("SELECT id, password_hash, role FROM users").
		WithArgs("parent@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "role"}).
			AddRow(10, hash, "guardian"))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := postLogin(r, `{"email":"Parent@Test.com","password":"correct horse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "access_token") {
		t.Fatalf("expected a token pair, got %s", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, mock := loginRouter(t)

	hash, err := middleware.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	mock.ExpectQuery("SELECT id, password_hash, role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "role"}).
			AddRow(10, hash, "guardian"))

	w := postLogin(r, `{"email":"parent@test.com","password":"wrong horse"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	r, mock := loginRouter(t)

	mock.ExpectQuery("SELECT id, password_hash, role FROM users").
		WillReturnError(sql.ErrNoRows)

	w := postLogin(r, `{"email":"nobody@test.com","password":"correct horse"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
