package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware captures the caller's credentials. They are not verified
// here: the data-access layer owns authentication and sees the same header.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cc, ok := c.(*AppContext)
		if !ok {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}

		authHeader := strings.TrimSpace(c.Request().Header.Get("Authorization"))
		if authHeader == "" && cc.App.RequireAuth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		cc.Authorization = authHeader
		return next(cc)
	}
}

// RequireExports answers 503 when the export pipeline is not configured.
func RequireExports(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cc, ok := c.(*AppContext)
		if !ok || cc.App.Exports == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Exports are disabled"})
		}
		return next(c)
	}
}
