package echoportal

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/session"
)

func registerAuthPages(g *echo.Group, v formValidator) {
	g.GET(nav.Login, page(loginPage))
	g.POST(nav.Login, page(func(ctx echo.Context, w *Workspace) error { return login(ctx, w, v) }))
	g.GET(nav.Register, page(registerPage))
	g.POST(nav.Register, page(func(ctx echo.Context, w *Workspace) error { return register(ctx, w, v) }))
	g.GET(nav.Profile, page(profile))
	g.GET(nav.ChangePassword, page(changePasswordPage))
	g.POST(nav.ChangePassword, page(func(ctx echo.Context, w *Workspace) error { return changePassword(ctx, w, v) }))
}

type loginForm struct {
	session.Credentials
	Role string `json:"role" validate:"required,oneof=admin faculty student"`
	From string `json:"from"`
}

func (lf *loginForm) Validate(validate *validator.Validate) error {
	lf.Credentials.Email = core.CleanString(lf.Credentials.Email, true /* lower */)
	lf.Role = core.CleanString(lf.Role, true /* lower */)
	return validate.Struct(lf)
}

func roleNames() []string {
	names := make([]string, len(session.Roles))
	for i, r := range session.Roles {
		names[i] = r.String()
	}
	return names
}

func loginPage(ctx echo.Context, w *Workspace) error {
	if w.Session.IsAuthenticated() {
		return ctx.Redirect(http.StatusFound, w.Guard.Dashboard())
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"page":  "login",
		"roles": roleNames(),
		"from":  ctx.QueryParam(nav.FromParam),
	})
}

func login(ctx echo.Context, w *Workspace, v formValidator) error {
	form, err := bindForm[loginForm](ctx, v)
	if err != nil {
		return err
	}
	role, _ := session.ParseRole(form.Role)

	from := form.From
	if from == "" {
		from = ctx.QueryParam(nav.FromParam)
	}

	// nothing cached for the previous user may leak to the next one
	w.Set.Reset()
	usr, err := w.Session.Login(ctx.Request().Context(), form.Credentials, role)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr, "redirect": w.Guard.AfterLogin(from)})
}

func registerPage(ctx echo.Context, w *Workspace) error {
	if w.Session.IsAuthenticated() {
		return ctx.Redirect(http.StatusFound, w.Guard.Dashboard())
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "register"})
}

// register signs up a student account and signs it in.
func register(ctx echo.Context, w *Workspace, v formValidator) error {
	form, err := bindForm[session.Registration](ctx, v)
	if err != nil {
		return err
	}

	w.Set.Reset()
	usr, err := w.Session.Register(ctx.Request().Context(), form)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"user": usr, "redirect": w.Guard.Dashboard()})
}

func logout(ctx echo.Context) error {
	w, err := getWorkspace(ctx)
	if err != nil {
		return err
	}
	if err = w.Session.Logout(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"redirect": nav.Login})
}

func profile(ctx echo.Context, w *Workspace) error {
	usr, ok := w.Session.CurrentUser()
	if !ok {
		return session.ErrNotAuthenticated
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"page":        "profile",
		"user":        usr,
		"displayName": usr.DisplayName(),
		"initial":     strings.ToUpper(firstRune(usr.DisplayName())),
		"dashboard":   w.Guard.Dashboard(),
	})
}

func changePasswordPage(ctx echo.Context, _ *Workspace) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "change-password"})
}

func changePassword(ctx echo.Context, w *Workspace, v formValidator) error {
	form, err := bindForm[session.ChangePassword](ctx, v)
	if err != nil {
		return err
	}
	if err = w.Session.ChangePassword(ctx.Request().Context(), form); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
