package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the principal holds one of the
// given roles. Admins pass every role check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, required := range roles {
				if p.Role == required || p.Role == RoleAdmin {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireHospital returns middleware that rejects principals not bound to a
// hospital. Registry-level admins cannot act as a requesting or providing
// hospital, so endpoints that mutate inventory or requests sit behind this.
func RequireHospital() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if p.HospitalID == uuid.Nil {
				return echo.NewHTTPError(http.StatusForbidden, "a hospital identity is required")
			}
			return next(c)
		}
	}
}
