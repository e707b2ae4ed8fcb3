package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/auth"
	"github.com/campusbook/facility-reservation/internal/config"
	"github.com/campusbook/facility-reservation/internal/middleware"
	"github.com/campusbook/facility-reservation/internal/model"
	"github.com/campusbook/facility-reservation/internal/repository"
	"github.com/campusbook/facility-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *auth.Service
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *auth.Service) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // ADMIN | STAFF | USER
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func userPayload(u *model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Register creates a user account.  Duplicate username or email answer 409.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user":    userPayload(u),
	})
}

// Login verifies credentials and issues a session token, returned both in
// the response body and as an HttpOnly session cookie (max-age one token
// lifetime).
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
	}

	token, err := h.Tokens.Issue(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	_ = h.Users.UpdateLastLogin(ctx, u.ID) // best effort

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.Cfg.TokenTTLMin * 60,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"token":   token,
		"user":    userPayload(u),
	})
}

// Logout revokes the presented token (cookie or bearer) and clears the
// session cookie.  Logging out without a token still succeeds; there is
// nothing to revoke.
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := presentedToken(c); token != "" {
		if err := h.Tokens.Revoke(c.Request().Context(), token); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// Me returns the claims of the presented token without a database read.
func (h *AuthHandler) Me(c echo.Context) error {
	token := presentedToken(c)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	username := h.Tokens.Username(token)
	if username == "" || !h.Tokens.IsValid(c.Request().Context(), token, username) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"username": username,
		"role":     h.Tokens.Role(token),
		"email":    h.Tokens.Email(token),
	})
}

// presentedToken pulls the raw token from the session cookie, falling back
// to a Bearer authorization header.
func presentedToken(c echo.Context) string {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
