package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

func registerRolePages(g *echo.Group, v formValidator) {
	g.GET(nav.Roles, page(rolesPage))
	g.POST(nav.Roles, page(func(ctx echo.Context, w *Workspace) error { return addRole(ctx, w, v) }))
	g.PUT(nav.Roles+"/:id", page(func(ctx echo.Context, w *Workspace) error { return editRole(ctx, w, v) }))
	g.DELETE(nav.Roles+"/:id", page(deleteRole))
}

func identity[T any](t T) T { return t }

func rolesView(ctx echo.Context, w *Workspace, mode readMode) (listView[school.Role], error) {
	return loadList(ctx.Request().Context(), w.Set.Roles, mode, identity[school.Role], "Failed to load roles")
}

func rolesPage(ctx echo.Context, w *Workspace) error {
	roles, err := rolesView(ctx, w, mount)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "role", "roles": roles})
}

func addRole(ctx echo.Context, w *Workspace, v formValidator) error {
	role, err := createFrom(ctx, v, w.Set.Roles)
	if err != nil {
		return err
	}
	return rolesAnswer(ctx, w, http.StatusCreated, "Role added successfully", &role)
}

func editRole(ctx echo.Context, w *Workspace, v formValidator) error {
	role, err := updateFrom(ctx, v, w.Set.Roles)
	if err != nil {
		return err
	}
	return rolesAnswer(ctx, w, http.StatusOK, "Role updated successfully", &role)
}

func deleteRole(ctx echo.Context, w *Workspace) error {
	if err := w.Set.Roles.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return rolesAnswer(ctx, w, http.StatusOK, "Role deleted successfully", nil)
}

func rolesAnswer(ctx echo.Context, w *Workspace, code int, msg string, role *school.Role) error {
	roles, err := rolesView(ctx, w, cached)
	if err != nil {
		return err
	}
	body := echo.Map{"message": msg, "roles": roles}
	if role != nil {
		body["role"] = *role
	}
	return ctx.JSON(code, body)
}
