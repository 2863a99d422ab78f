package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

func conflict(msg string) error {
	return echo.NewHTTPError(http.StatusConflict, msg)
}

func notFound(msg string) error {
	return echo.NewHTTPError(http.StatusNotFound, msg)
}

// newAppHTTPErrorHandler answers errors the way the school API does: {"message": "..."},
// plus the field errors of validation failures.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		body := echo.Map{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				origErr = errUnauthorized
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			body["message"] = origErr.Message
		case *core.ValidationError:
			code = http.StatusBadRequest
			body["message"] = origErr.Error()
			if len(origErr.Fields) > 0 {
				body["errors"] = origErr.FieldMap()
			}
		default:
			switch errors.Cause(err) {
			case inmemdb.ErrNotFound:
				code = http.StatusNotFound
				body["message"] = errHttpNotFound.Message
			case inmemdb.ErrConflict:
				code = http.StatusConflict
				body["message"] = "already exists"
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				body["error"] = msg

				var fields map[string]interface{}
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					fields = map[string]interface{}{"account": claims.Subject, "role": claims.Role}
				}
				logger.Error(msg, errors.Wrap(err, msg), fields)
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			body["error"] = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
