package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/session"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
)

const genericErrorText = "Something went wrong. Please try again."

// newAppHTTPErrorHandler answers {"message": "..."}: field errors for invalid forms,
// the backend's own message for API failures, a generic text otherwise.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		body := echo.Map{}

		if errors.Is(err, session.ErrAuthenticationFailed) {
			code = http.StatusUnauthorized
			body["message"] = core.ErrorMessage(err, "Authentication failed")
			respond(ctx, code, body)
			return
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
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
		case *schoolapi.Error:
			code = origErr.StatusCode
			if code >= http.StatusInternalServerError {
				code = http.StatusBadGateway
			}
			body["message"] = core.ErrorMessage(origErr, genericErrorText)
			if origErr.StatusCode == http.StatusUnauthorized {
				// the session is gone by now
				body["redirect"] = nav.Login
			}
		default:
			switch errors.Cause(err) {
			case session.ErrNotAuthenticated:
				code = http.StatusUnauthorized
				body["message"] = "Please sign in"
				body["redirect"] = nav.Login
			case resource.ErrUnsupported:
				code = http.StatusMethodNotAllowed
				body["message"] = http.StatusText(code)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				body["message"] = genericErrorText

				var args []interface{}
				args = append(args, errors.Wrap(err, "portal"))
				if w, wErr := getWorkspace(ctx); wErr == nil {
					if usr, ok := w.Session.CurrentUser(); ok {
						args = append(args, usr)
					}
				}
				logger.Error(http.StatusText(code), args...)
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			body["error"] = err.Error()
		}
		respond(ctx, code, body)
	}
}

func respond(ctx echo.Context, code int, body echo.Map) {
	if ctx.Response().Committed {
		return
	}
	var err error
	if ctx.Request().Method == http.MethodHead { // Issue #608
		err = ctx.NoContent(code)
	} else {
		err = ctx.JSON(code, body)
	}
	if err != nil {
		ctx.Echo().Logger.Error(err)
	}
}
