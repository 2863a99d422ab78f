package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/school"
	"github.com/SaurabhAlex/school-management-web/core/session"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
)

func registerDashboardPages(g *echo.Group) {
	g.GET(nav.Home, page(dashboardRouter))
	g.GET(nav.FacultyDashboard, page(facultyDashboard))
	g.GET(nav.StudentDashboard, page(studentDashboard))
	g.GET(nav.NewStudentDashboard, page(studentDashboard))
}

// dashboardRouter sends the user to the landing route of their role.
func dashboardRouter(ctx echo.Context, w *Workspace) error {
	return ctx.Redirect(http.StatusFound, w.Guard.Dashboard())
}

// facultyDashboard is where faculty members manage students.
func facultyDashboard(ctx echo.Context, w *Workspace) error {
	usr, ok := w.Session.CurrentUser()
	if !ok {
		return session.ErrNotAuthenticated
	}
	students, err := studentsView(ctx, w, mount)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"page":     "faculty-dashboard",
		"welcome":  "Welcome, " + usr.DisplayName(),
		"user":     usr,
		"students": students,
	})
}

type attendanceSummary struct {
	Present int                 `json:"present"`
	Absent  int                 `json:"absent"`
	Rate    float64             `json:"rate"`
	Records []school.Attendance `json:"records"`
}

// studentDashboard shows the signed in student their record and attendance, when the school
// has a student with their email.
func studentDashboard(ctx echo.Context, w *Workspace) error {
	usr, ok := w.Session.CurrentUser()
	if !ok {
		return session.ErrNotAuthenticated
	}
	body := echo.Map{
		"page":    "student-dashboard",
		"welcome": "Welcome, " + usr.DisplayName(),
		"user":    usr,
	}

	reqCtx := ctx.Request().Context()
	students, err := w.Set.Students.Fetch(reqCtx)
	if err != nil {
		if schoolapi.IsStatus(err, http.StatusUnauthorized) {
			return err
		}
		body["error"] = core.ErrorMessage(err, "Failed to load your record")
		return ctx.JSON(http.StatusOK, body)
	}

	for _, s := range students {
		if s.Email == "" || s.Email != usr.Email {
			continue
		}
		body["student"] = newStudentRow(s)
		rep, err := w.API.Attendance().Report(reqCtx, s.ID)
		if err != nil {
			if schoolapi.IsStatus(err, http.StatusUnauthorized) {
				return err
			}
			body["error"] = core.ErrorMessage(err, "Failed to load your attendance")
			break
		}
		body["attendance"] = attendanceSummary{
			Present: rep.Present, Absent: rep.Absent, Rate: rep.Rate(), Records: rep.Records,
		}
		break
	}
	return ctx.JSON(http.StatusOK, body)
}
