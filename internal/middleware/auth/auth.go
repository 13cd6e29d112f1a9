// Package auth wires the session manager into echo middleware. Role
// requirements are declared per route at registration time and checked
// before the handler runs.
package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/encontrar/shopping-api/internal/models"
	"github.com/encontrar/shopping-api/internal/session"
)

const userContextKey = "user"

// CurrentUser returns the resolved session user, or nil for anonymous
// callers.
func CurrentUser(c echo.Context) *models.User {
	if v := c.Get(userContextKey); v != nil {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func resolve(c echo.Context, m *session.Manager) (*models.User, error) {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return nil, session.ErrNoSession
	}
	return m.Resolve(c.Request().Context(), cookie.Value)
}

// Session resolves the cookie when present and stores the user in the echo
// context. It never rejects: routes that tolerate anonymous callers use this
// and apply visibility rules downstream.
func Session(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user, err := resolve(c, m); err == nil {
				c.Set(userContextKey, user)
			}
			return next(c)
		}
	}
}

// RequireLogin rejects with 401 unless a valid session accompanies the
// request.
func RequireLogin(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolve(c, m)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "session lookup failed")
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// RequireRoles fails closed: no session is 401, a session with a role
// outside the set is 403. The handler body never runs on denial.
func RequireRoles(m *session.Manager, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolve(c, m)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "session lookup failed")
			}
			if _, ok := allowed[user.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}
