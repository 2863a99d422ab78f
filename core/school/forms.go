package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/SaurabhAlex/school-management-web/core"
)

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	MobileNumber string `json:"mobileNumber" validate:"required,mobile"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.MobileNumber = core.CleanString(ns.MobileNumber)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// UpdateStudent replaces every editable field of a Student.
type UpdateStudent = NewStudent

// NewFaculty contains information needed to create a Faculty member.
// The employee id is generated by the backend.
type NewFaculty struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required,mobile"`
	Gender       string `json:"gender" validate:"required,oneof=Male Female Other"`
	Department   string `json:"department" validate:"required,department"`
	Role         string `json:"role" validate:"required"` // Role.ID
}

func (nf *NewFaculty) Validate(validate *validator.Validate) error {
	nf.FirstName = core.CleanString(nf.FirstName)
	nf.LastName = core.CleanString(nf.LastName)
	nf.Email = core.CleanString(nf.Email, true /* lower */)
	nf.MobileNumber = core.CleanString(nf.MobileNumber)
	nf.Role = core.CleanString(nf.Role)
	return validate.Struct(nf)
}

type UpdateFaculty = NewFaculty

// NewClass holds a class as typed by a user: Name is the display name ("5", not "05").
type NewClass struct {
	Name         string `json:"name" validate:"required,classname"`
	Section      string `json:"section" validate:"required,section"`
	AcademicYear string `json:"academicYear" validate:"required"`
	ClassTeacher string `json:"classTeacher" validate:"required"` // Faculty.ID
	Capacity     int    `json:"capacity" validate:"gt=0"`
	Description  string `json:"description,omitempty"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Section = core.CleanString(nc.Section)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	nc.ClassTeacher = core.CleanString(nc.ClassTeacher)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// Padded returns a copy of nc with the name in its stored form.
func (nc NewClass) Padded() NewClass {
	nc.Name = PadClassName(nc.Name)
	return nc
}

type UpdateClass = NewClass

// ClassForm returns the form pre-filled with c, as shown by an edit view.
func ClassForm(c Class) NewClass {
	return NewClass{
		Name:         DisplayClassName(c.Name),
		Section:      c.Section,
		AcademicYear: c.AcademicYear,
		ClassTeacher: c.ClassTeacher.ID,
		Capacity:     c.Capacity,
		Description:  c.Description,
	}
}

type NewRole struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (nr *NewRole) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

type UpdateRole = NewRole

type NewAttendance struct {
	StudentID string           `json:"studentId" validate:"required"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
	Notes     string           `json:"notes,omitempty"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	na.Date = core.CleanString(na.Date)
	na.Status = AttendanceStatus(core.CleanString(string(na.Status), true /* lower */))
	na.Notes = core.CleanString(na.Notes)
	return validate.Struct(na)
}

// UpdateAttendance changes the status (and notes) of an existing record.
type UpdateAttendance struct {
	Status AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
	Notes  string           `json:"notes,omitempty"`
}

func (ua *UpdateAttendance) Validate(validate *validator.Validate) error {
	ua.Status = AttendanceStatus(core.CleanString(string(ua.Status), true /* lower */))
	ua.Notes = core.CleanString(ua.Notes)
	return validate.Struct(ua)
}
