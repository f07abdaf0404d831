package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// User roles. A user carries exactly one role; RoleDev is the operator
// account and passes every role gate.
const (
	RoleDev        = "DEV"
	RoleDirector   = "DIRECTOR"
	RoleDoctor     = "DOCTOR"
	RolePatient    = "PATIENT"
	RoleCashier    = "CASHIER"
	RoleLaboratory = "LABORATORY"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleDev, RoleDirector, RoleDoctor, RolePatient, RoleCashier, RoleLaboratory:
		return true
	}
	return false
}

// RequireRole returns middleware that checks if the user has one of the
// specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleDev {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
