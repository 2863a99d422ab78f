package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	cookieName      = "sid"
	workspaceCtxKey = "workspace"
)

var errNoWorkspace = errors.New("workspace not found in echo.Context")

// workspaceMiddleware attaches the workspace of the browser, issuing a session cookie when needed.
func workspaceMiddleware(ws *Workspaces, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var sid string
			if cookie, err := ctx.Cookie(cookieName); err == nil {
				sid = cookie.Value
			}
			w := ws.Get(sid)
			if w.ID != sid {
				ctx.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    w.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx.Set(workspaceCtxKey, w)
			return next(ctx)
		}
	}
}

func getWorkspace(ctx echo.Context) (*Workspace, error) {
	if w, ok := ctx.Get(workspaceCtxKey).(*Workspace); ok {
		return w, nil
	}
	return nil, errNoWorkspace
}

// guardMiddleware lets a request through only when the navigation guard allows its route.
// Page loads are redirected; other requests get the redirect in an error body.
func guardMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			w, err := getWorkspace(ctx)
			if err != nil {
				return err
			}
			d := w.Guard.Check(ctx.Request().URL.Path)
			if d.Allowed() {
				return next(ctx)
			}
			if ctx.Request().Method == http.MethodGet {
				return ctx.Redirect(http.StatusFound, d.Location())
			}

			code := http.StatusForbidden
			if d.From != "" {
				code = http.StatusUnauthorized
			}
			return ctx.JSON(code, echo.Map{"message": http.StatusText(code), "redirect": d.Location()})
		}
	}
}
