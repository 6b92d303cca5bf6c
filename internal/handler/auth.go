package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // errors.Is comparisons against repository sentinels
	"net/http" // HTTP status codes and primitives
	"regexp"   // payload field validation
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/room-reservation/internal/config"     // app configuration
	"github.com/iliyamo/room-reservation/internal/repository" // DB repositories
	"github.com/iliyamo/room-reservation/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

var (
	emailRe    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{3,30}$`)
)

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
type authResp struct {
	User  userPart `json:"user"`
	Token string   `json:"token"`
}

// availability is the response of the checkEmail/checkUsername probes.
// The probe is advisory: registration itself is guarded by the unique
// keys, not by this read.
type availability struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Register creates a user and returns a signed token immediately.
// Duplicate email or username maps to 409; malformed fields to 422.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if !emailRe.MatchString(req.Email) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Email must be a valid email address")
	}
	if !usernameRe.MatchString(req.Username) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Username must be 3-30 alphanumeric characters")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Password must be at least 6 characters long")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Username, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return echo.NewHTTPError(http.StatusConflict, "Email is already taken")
		case errors.Is(err, repository.ErrUsernameExists):
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "create user failed")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, req.Username, h.Cfg.JWTTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issue token failed")
	}

	return c.JSON(http.StatusCreated, authResp{
		User:  userPart{ID: uid, Username: req.Username, Email: req.Email},
		Token: access.Token,
	})
}

// Login verifies a username/password pair and returns a fresh token.
// Both an unknown username and a wrong password answer 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.JWTTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issue token failed")
	}

	return c.JSON(http.StatusOK, authResp{
		User:  userPart{ID: u.ID, Username: u.Username, Email: u.Email},
		Token: access.Token,
	})
}

// CheckEmail reports whether an email is still available for registration.
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	taken, err := h.Users.EmailTaken(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	if taken {
		return c.JSON(http.StatusOK, availability{Success: false, Message: "Email is already taken", StatusCode: http.StatusConflict})
	}
	return c.JSON(http.StatusOK, availability{Success: true, Message: "Email is available", StatusCode: http.StatusOK})
}

// CheckUsername reports whether a username is still available.
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	taken, err := h.Users.UsernameTaken(ctx, username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	if taken {
		return c.JSON(http.StatusOK, availability{Success: false, Message: "Username is already taken", StatusCode: http.StatusConflict})
	}
	return c.JSON(http.StatusOK, availability{Success: true, Message: "Username is available", StatusCode: http.StatusOK})
}
