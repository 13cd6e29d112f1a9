package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/encontrar/shopping-api/internal/middleware/auth"
	"github.com/encontrar/shopping-api/internal/mykafka"
	"github.com/encontrar/shopping-api/internal/service"
	"github.com/encontrar/shopping-api/internal/session"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Sessions *session.Manager
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(CreateCookie(session.CookieName, token, "/", time.Now().Add(h.Sessions.TTL())))
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(CreateCookie(session.CookieName, "", "/", time.Now().Add(-1*time.Hour)))
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Auth.Register(c.Request().Context(), req.Email, req.Password, req.FirstName)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) SendVerificationCode(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Auth.SendCode(c.Request().Context(), req.Email); err != nil {
		return httpError(err)
	}

	h.publish(c, req.Email, map[string]any{
		"type":  "verification_code_sent",
		"email": req.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{"email": req.Email})
}

// VerifyCode consumes the code and, on success, logs the caller in. The code
// is spent before the session exists; if session creation then fails the
// client is told to request a fresh code rather than retry this one.
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Auth.VerifyCode(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		return httpError(err)
	}

	token, err := h.Sessions.Create(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed, request a new code")
	}
	h.setSessionCookie(c, token)

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_verified",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Verified and logged in",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Auth.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	token, err := h.Sessions.Create(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create session")
	}
	h.setSessionCookie(c, token)

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"id":        user.ID,
		"firstName": user.FirstName,
		"email":     user.Email,
		"role":      user.Role,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}

	if err := h.Sessions.Destroy(c.Request().Context(), cookie.Value); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}
	h.clearSessionCookie(c)

	if user := auth.CurrentUser(c); user != nil {
		h.publish(c, fmt.Sprint(user.ID), map[string]any{
			"type":   "user_logged_out",
			"userID": user.ID,
			"email":  user.Email,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "logged out"})
}
