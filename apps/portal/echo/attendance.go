package echoportal

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

// attendanceRow is a student and their status of the day; Status is empty until marked.
type attendanceRow struct {
	StudentID string                  `json:"studentId"`
	Name      string                  `json:"name"`
	RecordID  string                  `json:"recordId,omitempty"`
	Status    school.AttendanceStatus `json:"status"`
	Notes     string                  `json:"notes,omitempty"`
}

type attendanceTotals struct {
	Present  int `json:"present"`
	Absent   int `json:"absent"`
	Unmarked int `json:"unmarked"`
}

type dayForm struct {
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (df *dayForm) Validate(validate *validator.Validate) error {
	df.Date = core.CleanString(df.Date)
	return validate.Struct(df)
}

// attendanceEdit changes the record of one day.
type attendanceEdit struct {
	Date   string                  `json:"date" query:"date" validate:"required,datetime=2006-01-02"`
	Status school.AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
	Notes  string                  `json:"notes,omitempty"`
}

func (ae *attendanceEdit) Validate(validate *validator.Validate) error {
	ae.Date = core.CleanString(ae.Date)
	ae.Status = school.AttendanceStatus(core.CleanString(string(ae.Status), true /* lower */))
	ae.Notes = core.CleanString(ae.Notes)
	return validate.Struct(ae)
}

func registerAttendancePages(g *echo.Group, v formValidator) {
	today := func() string { return time.Now().Format(school.DateLayout) }

	g.GET(nav.Attendance, page(func(ctx echo.Context, w *Workspace) error { return attendancePage(ctx, w, v, today) }))
	g.POST(nav.Attendance, page(func(ctx echo.Context, w *Workspace) error { return markAttendance(ctx, w, v) }))
	g.PUT(nav.Attendance+"/:id", page(func(ctx echo.Context, w *Workspace) error { return editAttendance(ctx, w, v) }))
	g.GET(nav.Attendance+"/student/:id", page(attendanceReport))
}

// attendancePage lists every student with their status of ?date= (today by default).
func attendancePage(ctx echo.Context, w *Workspace, v formValidator, today func() string) error {
	day, err := bindForm[dayForm](ctx, v)
	if err != nil {
		return err
	}
	if day.Date == "" {
		day.Date = today()
	}
	return attendanceAnswer(ctx, w, mount, http.StatusOK, day.Date, "")
}

func markAttendance(ctx echo.Context, w *Workspace, v formValidator) error {
	form, err := bindForm[school.NewAttendance](ctx, v)
	if err != nil {
		return err
	}
	if _, err = w.Set.Attendance(form.Date).Create(ctx.Request().Context(), form); err != nil {
		return err
	}
	return attendanceAnswer(ctx, w, cached, http.StatusCreated, form.Date, "Attendance marked successfully")
}

func editAttendance(ctx echo.Context, w *Workspace, v formValidator) error {
	form, err := bindForm[attendanceEdit](ctx, v)
	if err != nil {
		return err
	}
	upd := school.UpdateAttendance{Status: form.Status, Notes: form.Notes}
	if _, err = w.Set.Attendance(form.Date).Update(ctx.Request().Context(), ctx.Param("id"), upd); err != nil {
		return err
	}
	return attendanceAnswer(ctx, w, cached, http.StatusOK, form.Date, "Attendance updated successfully")
}

// attendanceAnswer loads the students and the records of date at once and joins them.
func attendanceAnswer(ctx echo.Context, w *Workspace, mode readMode, code int, date, msg string) error {
	var (
		students listView[school.Student]
		records  listView[school.Attendance]
	)
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.Go(func() (err error) {
		students, err = loadList(gctx, w.Set.Students, mode, identity[school.Student], "Failed to load students")
		return err
	})
	g.Go(func() (err error) {
		records, err = loadList(gctx, w.Set.Attendance(date), mode, identity[school.Attendance], "Failed to load attendance")
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	byStudent := make(map[string]school.Attendance, len(records.Items))
	for _, rec := range records.Items {
		byStudent[rec.StudentID] = rec
	}

	rows := listView[attendanceRow]{State: students.State, Items: make([]attendanceRow, 0, len(students.Items)), Error: students.Error}
	if records.Error != "" {
		rows.State, rows.Error = records.State, records.Error
	}
	var totals attendanceTotals
	for _, s := range students.Items {
		row := attendanceRow{StudentID: s.ID, Name: s.FullName()}
		if rec, ok := byStudent[s.ID]; ok {
			row.RecordID, row.Status, row.Notes = rec.ID, rec.Status, rec.Notes
		}
		switch row.Status {
		case school.Present:
			totals.Present++
		case school.Absent:
			totals.Absent++
		default:
			totals.Unmarked++
		}
		rows.Items = append(rows.Items, row)
	}
	rows.Count = len(rows.Items)

	body := echo.Map{"page": "attendance", "date": date, "attendance": rows, "totals": totals}
	if msg != "" {
		body["message"] = msg
	}
	return ctx.JSON(code, body)
}

func attendanceReport(ctx echo.Context, w *Workspace) error {
	rep, err := w.API.Attendance().Report(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"page":   "attendance-report",
		"report": rep,
		"rate":   rep.Rate(),
	})
}
