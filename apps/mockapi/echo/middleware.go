package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/session"
)

// roleMiddleware lets in the accounts holding one of roles.
func roleMiddleware(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			role, _ := session.ParseRole(claims.Role)
			for _, allowed := range roles {
				if role == allowed {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

var (
	adminOnly = roleMiddleware(session.RoleAdmin)
	staffOnly = roleMiddleware(session.RoleAdmin, session.RoleFaculty)
)
