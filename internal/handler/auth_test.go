package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/utils"
)

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, BcryptCost: 4}
}

// newAuthTest builds an AuthHandler over a sqlmock database plus an echo
// context for the given request.
func newAuthTest(t *testing.T, method, target, body string) (*AuthHandler, sqlmock.Sqlmock, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))
	return h, mock, c, rec
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	return he.Code
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","username":"alice","password":"secret1"}`},
		{"username too short", `{"email":"a@b.co","username":"al","password":"secret1"}`},
		{"username not alphanumeric", `{"email":"a@b.co","username":"al ice!","password":"secret1"}`},
		{"password too short", `{"email":"a@b.co","username":"alice","password":"short"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, c, _ := newAuthTest(t, http.MethodPost, "/auth/register", tt.body)
			err := h.Register(c)
			assert.Equal(t, http.StatusUnprocessableEntity, httpErrorCode(t, err))
			assert.NoError(t, mock.ExpectationsWereMet()) // no DB call happened
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	h, mock, c, rec := newAuthTest(t, http.MethodPost, "/auth/register",
		`{"email":"Alice@Example.com","username":"Alice","password":"secret1"}`)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, username, password_hash) VALUES (?,?,?)")).
		WithArgs("alice@example.com", "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User struct {
			ID       uint64 `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.User.ID)
	assert.Equal(t, "alice", resp.User.Username)

	// The token must decode back to the new user's identity.
	id, username, err := utils.ParseAccessToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.Equal(t, "alice", username)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, c, _ := newAuthTest(t, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","username":"alice2","password":"secret1"}`)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, username, password_hash) VALUES (?,?,?)")).
		WithArgs("alice@example.com", "alice2", sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.uq_users_email'"))

	err := h.Register(c)
	assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))
}

func loginUserRows(hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at", "updated_at"}).
		AddRow(3, "bob@example.com", "bob", hash, now, now)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	userQuery := regexp.QuoteMeta("SELECT id, email, username, password_hash, created_at, updated_at FROM users WHERE username = ? LIMIT 1")

	t.Run("success", func(t *testing.T) {
		h, mock, c, rec := newAuthTest(t, http.MethodPost, "/auth/login",
			`{"username":"bob","password":"secret1"}`)
		mock.ExpectQuery(userQuery).WithArgs("bob").WillReturnRows(loginUserRows(string(hash)))

		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		id, _, err := utils.ParseAccessToken("test-secret", resp.Token)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), id)
	})

	t.Run("wrong password", func(t *testing.T) {
		h, mock, c, _ := newAuthTest(t, http.MethodPost, "/auth/login",
			`{"username":"bob","password":"wrong-pass"}`)
		mock.ExpectQuery(userQuery).WithArgs("bob").WillReturnRows(loginUserRows(string(hash)))

		err := h.Login(c)
		assert.Equal(t, http.StatusUnauthorized, httpErrorCode(t, err))
	})

	t.Run("unknown username", func(t *testing.T) {
		h, mock, c, _ := newAuthTest(t, http.MethodPost, "/auth/login",
			`{"username":"nobody","password":"secret1"}`)
		mock.ExpectQuery(userQuery).WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := h.Login(c)
		assert.Equal(t, http.StatusUnauthorized, httpErrorCode(t, err))
	})
}

func TestCheckUsername(t *testing.T) {
	existsQuery := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)")

	t.Run("taken", func(t *testing.T) {
		h, mock, c, rec := newAuthTest(t, http.MethodGet, "/", "")
		c.SetParamNames("username")
		c.SetParamValues("bob")
		mock.ExpectQuery(existsQuery).WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

		require.NoError(t, h.CheckUsername(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp availability
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("available", func(t *testing.T) {
		h, mock, c, rec := newAuthTest(t, http.MethodGet, "/", "")
		c.SetParamNames("username")
		c.SetParamValues("newname")
		mock.ExpectQuery(existsQuery).WithArgs("newname").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(0))

		require.NoError(t, h.CheckUsername(c))

		var resp availability
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
