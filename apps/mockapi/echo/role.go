package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/school"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

type roleApi struct {
	db *inmemdb.DB
	v  formValidator
}

// roleDoc is a role the way a document store answers it.
type roleDoc struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func newRoleDoc(r school.Role) roleDoc {
	return roleDoc{ID: r.ID, Name: r.Name, Description: r.Description}
}

func registerRoleAPI(g *echo.Group, db *inmemdb.DB, v formValidator) {
	api := roleApi{db: db, v: v}

	g.GET("/list", api.query)
	g.POST("/add", api.create, adminOnly)
	g.PUT("/edit/:id", api.update, adminOnly)
	g.DELETE("/delete/:id", api.destroy, adminOnly)
}

func (api *roleApi) query(ctx echo.Context) error {
	roles := api.db.Roles.All()
	docs := make([]roleDoc, len(roles))
	for i, r := range roles {
		docs[i] = newRoleDoc(r)
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *roleApi) create(ctx echo.Context) error {
	data, err := bindForm[school.NewRole](ctx, api.v)
	if err != nil {
		return err
	}

	role, err := api.db.Roles.Insert(
		school.Role{Name: data.Name, Description: data.Description}, sameRoleName(data.Name, ""),
	)
	if err != nil {
		return api.writeErr(err, "creating role")
	}
	return ctx.JSON(http.StatusCreated, newRoleDoc(role))
}

func (api *roleApi) update(ctx echo.Context) error {
	data, err := bindForm[school.UpdateRole](ctx, api.v)
	if err != nil {
		return err
	}

	id := ctx.Param("id")
	if _, err = api.db.Roles.Find(sameRoleName(data.Name, id)); err == nil {
		return api.writeErr(inmemdb.ErrConflict, "updating role")
	}
	role, err := api.db.Roles.Update(id, func(r *school.Role) error {
		r.Name, r.Description = data.Name, data.Description
		return nil
	})
	if err != nil {
		return api.writeErr(err, "updating role")
	}
	return ctx.JSON(http.StatusOK, newRoleDoc(role))
}

func (api *roleApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.db.Faculty.Find(func(f school.Faculty) bool { return f.Role.ID == id }); err == nil {
		return conflict("Role is assigned to faculty members")
	}
	if err := api.db.Roles.Delete(id); err != nil {
		return api.writeErr(err, "deleting role")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Role deleted successfully"})
}

func (api *roleApi) writeErr(err error, msg string) error {
	switch err {
	case inmemdb.ErrNotFound:
		return notFound("Role not found")
	case inmemdb.ErrConflict:
		return conflict("Role already exists")
	}
	return errors.Wrap(err, msg)
}

func sameRoleName(name, exceptID string) func(school.Role) bool {
	return func(r school.Role) bool { return strings.EqualFold(r.Name, name) && r.ID != exceptID }
}
