package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

type studentRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email,omitempty"`
}

func newStudentRow(s school.Student) studentRow {
	return studentRow{
		ID:           s.ID,
		Name:         s.FullName(),
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		MobileNumber: s.MobileNumber,
		Email:        s.Email,
	}
}

func registerStudentPages(g *echo.Group, v formValidator) {
	g.GET(nav.Students, page(studentsPage))
	g.POST(nav.Students, page(func(ctx echo.Context, w *Workspace) error { return addStudent(ctx, w, v) }))
	g.PUT(nav.Students+"/:id", page(func(ctx echo.Context, w *Workspace) error { return editStudent(ctx, w, v) }))
	g.DELETE(nav.Students+"/:id", page(deleteStudent))

	// the faculty dashboard manages the same students
	g.POST(nav.FacultyStudents, page(func(ctx echo.Context, w *Workspace) error { return addStudent(ctx, w, v) }))
	g.PUT(nav.FacultyStudents+"/:id", page(func(ctx echo.Context, w *Workspace) error { return editStudent(ctx, w, v) }))
	g.DELETE(nav.FacultyStudents+"/:id", page(deleteStudent))
}

func studentsView(ctx echo.Context, w *Workspace, mode readMode) (listView[studentRow], error) {
	return loadList(ctx.Request().Context(), w.Set.Students, mode, newStudentRow, "Failed to load students")
}

func studentsPage(ctx echo.Context, w *Workspace) error {
	students, err := studentsView(ctx, w, mount)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "students", "students": students})
}

func addStudent(ctx echo.Context, w *Workspace, v formValidator) error {
	stud, err := createFrom(ctx, v, w.Set.Students)
	if err != nil {
		return err
	}
	return studentsAnswer(ctx, w, http.StatusCreated, "Student added successfully", &stud)
}

func editStudent(ctx echo.Context, w *Workspace, v formValidator) error {
	stud, err := updateFrom(ctx, v, w.Set.Students)
	if err != nil {
		return err
	}
	return studentsAnswer(ctx, w, http.StatusOK, "Student updated successfully", &stud)
}

func deleteStudent(ctx echo.Context, w *Workspace) error {
	if err := w.Set.Students.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return studentsAnswer(ctx, w, http.StatusOK, "Student deleted successfully", nil)
}

// studentsAnswer answers a command with the refreshed table.
func studentsAnswer(ctx echo.Context, w *Workspace, code int, msg string, stud *school.Student) error {
	students, err := studentsView(ctx, w, cached)
	if err != nil {
		return err
	}
	body := echo.Map{"message": msg, "students": students}
	if stud != nil {
		body["student"] = newStudentRow(*stud)
	}
	return ctx.JSON(code, body)
}
