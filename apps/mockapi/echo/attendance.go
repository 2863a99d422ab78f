package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/school"
	"github.com/SaurabhAlex/school-management-web/core/session"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

type attendanceApi struct {
	db *inmemdb.DB
	v  formValidator
}

func registerAttendanceAPI(g *echo.Group, db *inmemdb.DB, v formValidator) {
	api := attendanceApi{db: db, v: v}

	g.GET("", api.query, staffOnly)
	g.POST("", api.create, staffOnly)
	g.PUT("/:id", api.update, staffOnly)
	g.GET("/student/:id", api.report)
}

// query lists the records of ?date=, or all of them.
func (api *attendanceApi) query(ctx echo.Context) error {
	date := ctx.QueryParam("date")
	return ctx.JSON(http.StatusOK, api.db.Attendance.Filter(func(a school.Attendance) bool {
		return date == "" || a.Date == date
	}))
}

func (api *attendanceApi) create(ctx echo.Context) error {
	data, err := bindForm[school.NewAttendance](ctx, api.v)
	if err != nil {
		return err
	}
	if _, err = api.db.Students.Get(data.StudentID); err != nil {
		return notFound("Student not found")
	}

	rec := school.Attendance{StudentID: data.StudentID, Date: data.Date, Status: data.Status, Notes: data.Notes}
	rec, err = api.db.Attendance.Insert(rec, func(a school.Attendance) bool {
		return a.StudentID == rec.StudentID && a.Date == rec.Date
	})
	if err != nil {
		return api.writeErr(err, "creating attendance")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	data, err := bindForm[school.UpdateAttendance](ctx, api.v)
	if err != nil {
		return err
	}

	rec, err := api.db.Attendance.Update(ctx.Param("id"), func(a *school.Attendance) error {
		a.Status, a.Notes = data.Status, data.Notes
		return nil
	})
	if err != nil {
		return api.writeErr(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

// report answers staff for any student, and a student only for the record carrying their email.
func (api *attendanceApi) report(ctx echo.Context) error {
	id := ctx.Param("id")
	stud, err := api.db.Students.Get(id)
	if err != nil {
		return notFound("Student not found")
	}
	acc, err := getContextAccount(ctx, api.db)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	if acc.Role != session.RoleAdmin && acc.Role != session.RoleFaculty {
		if stud.Email == "" || stud.Email != acc.Email {
			return errHttpForbidden
		}
	}
	records := api.db.Attendance.Filter(func(a school.Attendance) bool { return a.StudentID == id })
	return ctx.JSON(http.StatusOK, echo.Map{"studentId": id, "attendance": records})
}

func (api *attendanceApi) writeErr(err error, msg string) error {
	switch err {
	case inmemdb.ErrNotFound:
		return notFound("Attendance record not found")
	case inmemdb.ErrConflict:
		return conflict("Attendance already marked for this date")
	}
	return errors.Wrap(err, msg)
}
