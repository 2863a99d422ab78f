package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/school"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

type studentApi struct {
	db *inmemdb.DB
	v  formValidator
}

func registerStudentAPI(g *echo.Group, db *inmemdb.DB, v formValidator) {
	api := studentApi{db: db, v: v}

	g.GET("/list", api.query)
	g.POST("/add", api.create, staffOnly)
	g.PUT("/edit/:id", api.update, staffOnly)
	g.DELETE("/delete/:id", api.destroy, staffOnly)
}

func (api *studentApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"students": api.db.Students.All()})
}

func (api *studentApi) create(ctx echo.Context) error {
	data, err := bindForm[school.NewStudent](ctx, api.v)
	if err != nil {
		return err
	}

	stud, err := api.db.Students.Insert(studentFrom(data), sameMobile(data.MobileNumber, ""))
	if err != nil {
		return api.writeErr(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Student added successfully", "student": stud})
}

func (api *studentApi) update(ctx echo.Context) error {
	data, err := bindForm[school.UpdateStudent](ctx, api.v)
	if err != nil {
		return err
	}

	id := ctx.Param("id")
	if _, err = api.db.Students.Find(sameMobile(data.MobileNumber, id)); err == nil {
		return api.writeErr(inmemdb.ErrConflict, "updating student")
	}
	stud, err := api.db.Students.Update(id, func(s *school.Student) error {
		*s = studentFrom(data)
		return nil
	})
	if err != nil {
		return api.writeErr(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Student updated successfully", "student": stud})
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.db.Students.Delete(id); err != nil {
		return api.writeErr(err, "deleting student")
	}
	// a student's attendance goes with them
	for _, rec := range api.db.Attendance.Filter(func(a school.Attendance) bool { return a.StudentID == id }) {
		_ = api.db.Attendance.Delete(rec.ID)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Student deleted successfully"})
}

func (api *studentApi) writeErr(err error, msg string) error {
	switch err {
	case inmemdb.ErrNotFound:
		return notFound("Student not found")
	case inmemdb.ErrConflict:
		return conflict("Student with this mobile number already exists")
	}
	return errors.Wrap(err, msg)
}

func studentFrom(data school.NewStudent) school.Student {
	return school.Student{
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		MobileNumber: data.MobileNumber,
		Email:        data.Email,
	}
}

// sameMobile matches the students other than exceptID using mobile.
func sameMobile(mobile, exceptID string) func(school.Student) bool {
	return func(s school.Student) bool { return s.MobileNumber == mobile && s.ID != exceptID }
}
