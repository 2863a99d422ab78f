package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

type facultyRow struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employeeId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Gender       string `json:"gender"`
	Department   string `json:"department"`
	RoleID       string `json:"roleId"`
	Role         string `json:"role"`
	IsActive     bool   `json:"isActive"`
}

func newFacultyRow(f school.Faculty) facultyRow {
	return facultyRow{
		ID:           f.ID,
		EmployeeID:   f.EmployeeID,
		Name:         f.FullName(),
		Email:        f.Email,
		MobileNumber: f.MobileNumber,
		Gender:       f.Gender,
		Department:   f.Department,
		RoleID:       f.Role.ID,
		Role:         f.Role.Name,
		IsActive:     f.IsActive,
	}
}

// option is an entry of a select box.
type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func registerFacultyPages(g *echo.Group, v formValidator) {
	g.GET(nav.Faculty, page(facultyPage))
	g.POST(nav.Faculty, page(func(ctx echo.Context, w *Workspace) error { return addFaculty(ctx, w, v) }))
	g.PUT(nav.Faculty+"/:id", page(func(ctx echo.Context, w *Workspace) error { return editFaculty(ctx, w, v) }))
	g.DELETE(nav.Faculty+"/:id", page(deleteFaculty))
}

func facultyView(ctx echo.Context, w *Workspace) (listView[facultyRow], error) {
	return loadList(ctx.Request().Context(), w.Set.Faculty, cached, newFacultyRow, "Failed to load faculty")
}

// facultyPage loads the faculty table and the roles to pick from at once.
func facultyPage(ctx echo.Context, w *Workspace) error {
	var (
		faculty listView[facultyRow]
		roles   listView[option]
	)
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.Go(func() (err error) {
		faculty, err = loadList(gctx, w.Set.Faculty, mount, newFacultyRow, "Failed to load faculty")
		return err
	})
	g.Go(func() (err error) {
		roles, err = loadList(gctx, w.Set.Roles, mount, func(r school.Role) option {
			return option{Value: r.ID, Label: r.Name}
		}, "Failed to load roles")
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"page":        "faculty",
		"faculty":     faculty,
		"roles":       roles,
		"genders":     school.Genders,
		"departments": school.Departments,
	})
}

func addFaculty(ctx echo.Context, w *Workspace, v formValidator) error {
	fac, err := createFrom(ctx, v, w.Set.Faculty)
	if err != nil {
		return err
	}
	return facultyAnswer(ctx, w, http.StatusCreated, "Faculty added successfully", &fac)
}

func editFaculty(ctx echo.Context, w *Workspace, v formValidator) error {
	fac, err := updateFrom(ctx, v, w.Set.Faculty)
	if err != nil {
		return err
	}
	return facultyAnswer(ctx, w, http.StatusOK, "Faculty updated successfully", &fac)
}

func deleteFaculty(ctx echo.Context, w *Workspace) error {
	if err := w.Set.Faculty.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return facultyAnswer(ctx, w, http.StatusOK, "Faculty deleted successfully", nil)
}

func facultyAnswer(ctx echo.Context, w *Workspace, code int, msg string, fac *school.Faculty) error {
	faculty, err := facultyView(ctx, w)
	if err != nil {
		return err
	}
	body := echo.Map{"message": msg, "faculty": faculty}
	if fac != nil {
		body["member"] = newFacultyRow(*fac)
	}
	return ctx.JSON(code, body)
}
