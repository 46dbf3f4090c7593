package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderUserUID carries the caller identity. Authentication proper is
// handled upstream; this service only needs to know who is acting.
const HeaderUserUID = "X-User-UID"

func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid := c.Request().Header.Get(HeaderUserUID); uid != "" {
				c.Set("uid", uid)
			}
			return next(c)
		}
	}
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, _ := c.Get("uid").(string)
		if uid == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing user identity"})
		}
		return next(c)
	}
}
