package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/school"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

type classApi struct {
	db *inmemdb.DB
	v  formValidator
}

func registerClassAPI(g *echo.Group, db *inmemdb.DB, v formValidator) {
	api := classApi{db: db, v: v}

	g.GET("/list", api.query)
	g.POST("/add", api.create, adminOnly)
	g.PUT("/edit/:id", api.update, adminOnly)
	g.DELETE("/delete/:id", api.destroy, adminOnly)
}

func (api *classApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "classes": api.db.Classes.All()})
}

func (api *classApi) create(ctx echo.Context) error {
	data, err := bindForm[school.NewClass](ctx, api.v)
	if err != nil {
		return err
	}
	cls, err := api.classFrom(data)
	if err != nil {
		return err
	}

	if cls, err = api.db.Classes.Insert(cls, sameClass(cls, "")); err != nil {
		return api.writeErr(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "class": cls})
}

func (api *classApi) update(ctx echo.Context) error {
	data, err := bindForm[school.UpdateClass](ctx, api.v)
	if err != nil {
		return err
	}
	cls, err := api.classFrom(data)
	if err != nil {
		return err
	}

	id := ctx.Param("id")
	if _, err = api.db.Classes.Find(sameClass(cls, id)); err == nil {
		return api.writeErr(inmemdb.ErrConflict, "updating class")
	}
	if cls, err = api.db.Classes.Update(id, func(c *school.Class) error {
		*c = cls
		return nil
	}); err != nil {
		return api.writeErr(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "class": cls})
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.db.Classes.Delete(ctx.Param("id")); err != nil {
		return api.writeErr(err, "deleting class")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Class deleted successfully"})
}

// classFrom stores the name zero-padded and populates the class teacher.
func (api *classApi) classFrom(data school.NewClass) (school.Class, error) {
	teacher, err := api.db.Faculty.Get(data.ClassTeacher)
	if err != nil {
		return school.Class{}, core.NewValidationError(
			nil, core.FieldError{Field: "classTeacher", Error: "Class teacher not found"},
		)
	}
	return school.Class{
		Name:         school.PadClassName(data.Name),
		Section:      data.Section,
		AcademicYear: data.AcademicYear,
		ClassTeacher: school.FacultyRef{ID: teacher.ID, Name: teacher.FullName(), EmployeeID: teacher.EmployeeID},
		Capacity:     data.Capacity,
		Description:  data.Description,
	}, nil
}

func (api *classApi) writeErr(err error, msg string) error {
	switch err {
	case inmemdb.ErrNotFound:
		return notFound("Class not found")
	case inmemdb.ErrConflict:
		return conflict("Class already exists for this academic year")
	}
	return errors.Wrap(err, msg)
}

func sameClass(cls school.Class, exceptID string) func(school.Class) bool {
	return func(c school.Class) bool {
		return c.Name == cls.Name && c.Section == cls.Section && c.AcademicYear == cls.AcademicYear && c.ID != exceptID
	}
}
