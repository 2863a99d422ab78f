package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// bindForm binds the request body into a new F and validates it.
func bindForm[F any, P interface {
	*F
	validatable
}](ctx echo.Context, v formValidator) (F, error) {
	var form F
	if err := ctx.Bind(&form); err != nil {
		return form, errors.Wrapf(err, "binding to %T", form)
	}
	return form, v.check(P(&form))
}
