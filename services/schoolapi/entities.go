package schoolapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

// EntityAPI maps the CRUD verbs of an entity onto
// GET <base>/list, POST <base>/add, PUT <base>/edit/:id and DELETE <base>/delete/:id.
type EntityAPI[T, C, U any] struct {
	c       *Client
	base    string
	listKey string // key of the list in wrapped list answers
	itemKey string // key of the entity in wrapped create/update answers
}

func (api EntityAPI[T, C, U]) List(ctx context.Context) ([]T, error) {
	data, err := api.c.do(ctx, http.MethodGet, api.base+"/list", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[T](data, api.listKey)
}

func (api EntityAPI[T, C, U]) Create(ctx context.Context, in C) (T, error) {
	data, err := api.c.do(ctx, http.MethodPost, api.base+"/add", in)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](data, api.itemKey)
}

func (api EntityAPI[T, C, U]) Update(ctx context.Context, id string, in U) (T, error) {
	var zero T
	if id == "" {
		return zero, errMissingID
	}
	data, err := api.c.do(ctx, http.MethodPut, api.base+"/edit/"+url.PathEscape(id), in)
	if err != nil {
		return zero, err
	}
	return decodeOne[T](data, api.itemKey)
}

func (api EntityAPI[T, C, U]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errMissingID
	}
	_, err := api.c.do(ctx, http.MethodDelete, api.base+"/delete/"+url.PathEscape(id), nil)
	return err
}

// Funcs returns the calls of api as resource funcs.
func (api EntityAPI[T, C, U]) Funcs() resource.Funcs[T, C, U] {
	return resource.Funcs[T, C, U]{List: api.List, Create: api.Create, Update: api.Update, Delete: api.Delete}
}

type (
	StudentAPI = EntityAPI[school.Student, school.NewStudent, school.UpdateStudent]
	FacultyAPI = EntityAPI[school.Faculty, school.NewFaculty, school.UpdateFaculty]
	RoleAPI    = EntityAPI[school.Role, school.NewRole, school.UpdateRole]
)

func (c *Client) Students() StudentAPI {
	return StudentAPI{c: c, base: "/api/student", listKey: "students", itemKey: "student"}
}

func (c *Client) Faculty() FacultyAPI {
	return FacultyAPI{c: c, base: "/api/faculty", listKey: "faculty", itemKey: "faculty"}
}

func (c *Client) Roles() RoleAPI {
	return RoleAPI{c: c, base: "/api/role", listKey: "roles", itemKey: "role"}
}

// ClassAPI sends class names in their stored, zero-padded form.
type ClassAPI struct {
	EntityAPI[school.Class, school.NewClass, school.UpdateClass]
}

func (c *Client) Classes() ClassAPI {
	return ClassAPI{EntityAPI[school.Class, school.NewClass, school.UpdateClass]{
		c: c, base: "/api/class", listKey: "classes", itemKey: "class",
	}}
}

func (api ClassAPI) Create(ctx context.Context, nc school.NewClass) (school.Class, error) {
	return api.EntityAPI.Create(ctx, nc.Padded())
}

func (api ClassAPI) Update(ctx context.Context, id string, uc school.UpdateClass) (school.Class, error) {
	return api.EntityAPI.Update(ctx, id, uc.Padded())
}

func (api ClassAPI) Funcs() resource.Funcs[school.Class, school.NewClass, school.UpdateClass] {
	return resource.Funcs[school.Class, school.NewClass, school.UpdateClass]{
		List: api.List, Create: api.Create, Update: api.Update, Delete: api.Delete,
	}
}

// SetFuncs wires every entity of the API into resources.
func (c *Client) SetFuncs() resource.SetFuncs {
	return resource.SetFuncs{
		Students:   c.Students().Funcs(),
		Faculty:    c.Faculty().Funcs(),
		Classes:    c.Classes().Funcs(),
		Roles:      c.Roles().Funcs(),
		Attendance: c.Attendance(),
	}
}
