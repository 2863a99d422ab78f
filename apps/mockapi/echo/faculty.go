package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/school"
	"github.com/SaurabhAlex/school-management-web/core/session"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

const employeeIDPrefix = "EMP"

type facultyApi struct {
	db *inmemdb.DB
	v  formValidator
}

func registerFacultyAPI(g *echo.Group, db *inmemdb.DB, v formValidator) {
	api := facultyApi{db: db, v: v}

	g.GET("/list", api.query)
	g.POST("/add", api.create, adminOnly)
	g.PUT("/edit/:id", api.update, adminOnly)
	g.DELETE("/delete/:id", api.destroy, adminOnly)
}

func (api *facultyApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"faculty": api.db.Faculty.All()})
}

// create adds a faculty member along with their login. The initial password is their mobile number.
func (api *facultyApi) create(ctx echo.Context) error {
	data, err := bindForm[school.NewFaculty](ctx, api.v)
	if err != nil {
		return err
	}
	role, err := api.role(data.Role)
	if err != nil {
		return err
	}

	fac := facultyFrom(data, role)
	fac.EmployeeID = api.nextEmployeeID()
	fac.IsActive = true
	if fac, err = api.db.Faculty.Insert(fac, sameFacultyEmail(data.Email, "")); err != nil {
		return api.writeErr(err, "creating faculty")
	}

	if _, err = api.db.CreateAccount(
		fac.FullName(), fac.Email, fac.MobileNumber, session.RoleFaculty, fac.ID,
	); err != nil {
		_ = api.db.Faculty.Delete(fac.ID)
		return api.writeErr(err, "creating faculty account")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Faculty added successfully", "faculty": fac})
}

func (api *facultyApi) update(ctx echo.Context) error {
	data, err := bindForm[school.UpdateFaculty](ctx, api.v)
	if err != nil {
		return err
	}
	role, err := api.role(data.Role)
	if err != nil {
		return err
	}

	id := ctx.Param("id")
	if _, err = api.db.Faculty.Find(sameFacultyEmail(data.Email, id)); err == nil {
		return api.writeErr(inmemdb.ErrConflict, "updating faculty")
	}
	fac, err := api.db.Faculty.Update(id, func(f *school.Faculty) error {
		upd := facultyFrom(data, role)
		upd.EmployeeID, upd.IsActive = f.EmployeeID, f.IsActive
		*f = upd
		return nil
	})
	if err != nil {
		return api.writeErr(err, "updating faculty")
	}

	if acc, err := api.account(id); err == nil {
		_, _ = api.db.Accounts.Update(acc.ID, func(a *inmemdb.Account) error {
			a.Name, a.Email = fac.FullName(), fac.Email
			return nil
		})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Faculty updated successfully", "faculty": fac})
}

func (api *facultyApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.db.Classes.Find(func(c school.Class) bool { return c.ClassTeacher.ID == id }); err == nil {
		return conflict("Faculty member is a class teacher")
	}
	if err := api.db.Faculty.Delete(id); err != nil {
		return api.writeErr(err, "deleting faculty")
	}
	if acc, err := api.account(id); err == nil {
		_ = api.db.Accounts.Delete(acc.ID)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Faculty deleted successfully"})
}

func (api *facultyApi) role(id string) (school.Role, error) {
	role, err := api.db.Roles.Get(id)
	if err != nil {
		return role, core.NewValidationError(nil, core.FieldError{Field: "role", Error: "Role not found"})
	}
	return role, nil
}

func (api *facultyApi) account(facultyID string) (inmemdb.Account, error) {
	return api.db.Accounts.Find(func(a inmemdb.Account) bool { return a.ProfileID == facultyID })
}

// nextEmployeeID continues after the highest id handed out so far, e.g. EMP007.
func (api *facultyApi) nextEmployeeID() string {
	var last int
	for _, f := range api.db.Faculty.All() {
		if n, err := strconv.Atoi(strings.TrimPrefix(f.EmployeeID, employeeIDPrefix)); err == nil && n > last {
			last = n
		}
	}
	return fmt.Sprintf("%s%03d", employeeIDPrefix, last+1)
}

func (api *facultyApi) writeErr(err error, msg string) error {
	switch err {
	case inmemdb.ErrNotFound:
		return notFound("Faculty not found")
	case inmemdb.ErrConflict:
		return conflict("Faculty with this email already exists")
	}
	return errors.Wrap(err, msg)
}

func facultyFrom(data school.NewFaculty, role school.Role) school.Faculty {
	return school.Faculty{
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		MobileNumber: data.MobileNumber,
		Gender:       data.Gender,
		Department:   data.Department,
		Role:         school.RoleRef{ID: role.ID, Name: role.Name},
	}
}

func sameFacultyEmail(email, exceptID string) func(school.Faculty) bool {
	return func(f school.Faculty) bool { return f.Email == email && f.ID != exceptID }
}
