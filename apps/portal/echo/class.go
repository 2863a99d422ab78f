package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

// classRow shows the class name the way users type it; Form pre-fills the edit dialog.
type classRow struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Section      string          `json:"section"`
	Label        string          `json:"label"`
	AcademicYear string          `json:"academicYear"`
	Teacher      string          `json:"classTeacher"`
	Capacity     int             `json:"capacity"`
	Description  string          `json:"description,omitempty"`
	Form         school.NewClass `json:"form"`
}

func newClassRow(c school.Class) classRow {
	teacher := c.ClassTeacher.Name
	if teacher == "" {
		teacher = c.ClassTeacher.ID
	}
	return classRow{
		ID:           c.ID,
		Name:         school.DisplayClassName(c.Name),
		Section:      c.Section,
		Label:        c.Label(),
		AcademicYear: c.AcademicYear,
		Teacher:      teacher,
		Capacity:     c.Capacity,
		Description:  c.Description,
		Form:         school.ClassForm(c),
	}
}

func registerClassPages(g *echo.Group, v formValidator) {
	g.GET(nav.Classes, page(classPage))
	g.POST(nav.Classes, page(func(ctx echo.Context, w *Workspace) error { return addClass(ctx, w, v) }))
	g.PUT(nav.Classes+"/:id", page(func(ctx echo.Context, w *Workspace) error { return editClass(ctx, w, v) }))
	g.DELETE(nav.Classes+"/:id", page(deleteClass))
}

func classesView(ctx echo.Context, w *Workspace) (listView[classRow], error) {
	return loadList(ctx.Request().Context(), w.Set.Classes, cached, newClassRow, "Failed to load classes")
}

// classPage loads the classes and the teachers to pick from at once.
func classPage(ctx echo.Context, w *Workspace) error {
	var (
		classes  listView[classRow]
		teachers listView[option]
	)
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.Go(func() (err error) {
		classes, err = loadList(gctx, w.Set.Classes, mount, newClassRow, "Failed to load classes")
		return err
	})
	g.Go(func() (err error) {
		teachers, err = loadList(gctx, w.Set.Faculty, mount, func(f school.Faculty) option {
			return option{Value: f.ID, Label: f.FullName() + " (" + f.EmployeeID + ")"}
		}, "Failed to load faculty")
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "class", "classes": classes, "teachers": teachers})
}

func addClass(ctx echo.Context, w *Workspace, v formValidator) error {
	cls, err := createFrom(ctx, v, w.Set.Classes)
	if err != nil {
		return err
	}
	return classesAnswer(ctx, w, http.StatusCreated, "Class added successfully", &cls)
}

func editClass(ctx echo.Context, w *Workspace, v formValidator) error {
	cls, err := updateFrom(ctx, v, w.Set.Classes)
	if err != nil {
		return err
	}
	return classesAnswer(ctx, w, http.StatusOK, "Class updated successfully", &cls)
}

func deleteClass(ctx echo.Context, w *Workspace) error {
	if err := w.Set.Classes.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return classesAnswer(ctx, w, http.StatusOK, "Class deleted successfully", nil)
}

func classesAnswer(ctx echo.Context, w *Workspace, code int, msg string, cls *school.Class) error {
	classes, err := classesView(ctx, w)
	if err != nil {
		return err
	}
	body := echo.Map{"message": msg, "classes": classes}
	if cls != nil {
		body["class"] = newClassRow(*cls)
	}
	return ctx.JSON(code, body)
}
