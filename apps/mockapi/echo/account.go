package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/session"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

type accountApi struct {
	db     *inmemdb.DB
	tokens *tokenIssuer
	v      formValidator
}

func registerAuthAPI(g, authed *echo.Group, db *inmemdb.DB, tokens *tokenIssuer, v formValidator) {
	api := accountApi{db: db, tokens: tokens, v: v}

	g.POST("/login", api.login(session.RoleAdmin))
	g.POST("/faculty/login", api.login(session.RoleFaculty))
	g.POST("/student/login", api.login(session.RoleStudent))
	g.POST("/signup", api.signup)

	authed.POST("/change-password", api.changePassword)
	authed.POST("/faculty/change-password", api.changePassword, roleMiddleware(session.RoleFaculty))
}

type passwordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (pc *passwordChange) Validate(validate *validator.Validate) error { return validate.Struct(pc) }

func (api *accountApi) login(role session.Role) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data session.Credentials
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to Credentials")
		}
		if err := api.v.check(&data); err != nil {
			return err
		}

		acc, err := authenticate(api.db, data, role)
		if err != nil {
			return err
		}
		return api.respondWithToken(ctx, http.StatusOK, acc)
	}
}

// signup registers students only.
func (api *accountApi) signup(ctx echo.Context) error {
	var data session.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if err := api.v.check(&data); err != nil {
		return err
	}

	acc, err := api.db.CreateAccount(data.Name, data.Email, data.Password, session.RoleStudent)
	if err != nil {
		if err == inmemdb.ErrConflict {
			return conflict("User already exists")
		}
		return errors.Wrap(err, "creating account")
	}
	return api.respondWithToken(ctx, http.StatusCreated, acc)
}

func (api *accountApi) changePassword(ctx echo.Context) error {
	var data passwordChange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to passwordChange")
	}
	if err := api.v.check(&data); err != nil {
		return err
	}

	acc, err := getContextAccount(ctx, api.db)
	if err != nil {
		return err
	}
	if acc.CheckPassword(data.CurrentPassword) != nil {
		return core.NewValidationError(
			errors.New("Current password is incorrect"),
			core.FieldError{Field: "currentPassword", Error: "Current password is incorrect"},
		)
	}
	if _, err = api.db.Accounts.Update(acc.ID, func(a *inmemdb.Account) error {
		return a.SetPassword(data.NewPassword)
	}); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

func (api *accountApi) respondWithToken(ctx echo.Context, code int, acc inmemdb.Account) error {
	token, err := api.tokens.GenerateToken(acc)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, echo.Map{"token": token, "user": api.accountView(acc)})
}

func (api *accountApi) accountView(acc inmemdb.Account) session.Account {
	view := session.Account{ID: acc.ID, Name: acc.Name, Email: acc.Email, Role: acc.Role.String()}
	if acc.ProfileID != "" {
		if fac, err := api.db.Faculty.Get(acc.ProfileID); err == nil {
			view.FirstName, view.LastName = fac.FirstName, fac.LastName
		}
	}
	return view
}
