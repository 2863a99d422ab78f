package school

import (
	"encoding/json"
	"strings"
)

// Entity is implemented by every server-owned record.
type Entity interface {
	GetID() string
}

type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
)

var (
	Genders     = []string{"Male", "Female", "Other"}
	Departments = []string{"Science", "Mathematics", "English", "Social Studies", "Physical Education", "Arts", "Other"}
)

type Student struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email,omitempty"`
}

func (s Student) GetID() string { return s.ID }

func (s Student) FullName() string { return fullName(s.FirstName, s.LastName) }

func (s *Student) UnmarshalJSON(data []byte) error {
	type alias Student
	if err := json.Unmarshal(data, (*alias)(s)); err != nil {
		return err
	}
	return fillID(&s.ID, data)
}

type Faculty struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employeeId"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	MobileNumber string  `json:"mobileNumber"`
	Gender       string  `json:"gender"`
	Department   string  `json:"department"`
	Role         RoleRef `json:"role"`
	IsActive     bool    `json:"isActive"`
}

func (f Faculty) GetID() string { return f.ID }

func (f Faculty) FullName() string { return fullName(f.FirstName, f.LastName) }

func (f *Faculty) UnmarshalJSON(data []byte) error {
	type alias Faculty
	if err := json.Unmarshal(data, (*alias)(f)); err != nil {
		return err
	}
	return fillID(&f.ID, data)
}

// Class holds the name as stored by the backend (zero-padded); see DisplayClassName.
type Class struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Section      string     `json:"section"`
	AcademicYear string     `json:"academicYear"`
	ClassTeacher FacultyRef `json:"classTeacher"`
	Capacity     int        `json:"capacity"`
	Description  string     `json:"description,omitempty"`
}

func (c Class) GetID() string { return c.ID }

// Label is the human name of the class, e.g. "5 B".
func (c Class) Label() string {
	return strings.TrimSpace(DisplayClassName(c.Name) + " " + c.Section)
}

func (c *Class) UnmarshalJSON(data []byte) error {
	type alias Class
	if err := json.Unmarshal(data, (*alias)(c)); err != nil {
		return err
	}
	return fillID(&c.ID, data)
}

// Role is an admin-defined label given to faculty members. It is unrelated to session.Role.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r Role) GetID() string { return r.ID }

func (r *Role) UnmarshalJSON(data []byte) error {
	type alias Role
	if err := json.Unmarshal(data, (*alias)(r)); err != nil {
		return err
	}
	return fillID(&r.ID, data)
}

type Attendance struct {
	ID        string           `json:"id"`
	StudentID string           `json:"studentId"`
	Date      string           `json:"date"` // YYYY-MM-DD
	Status    AttendanceStatus `json:"status"`
	Notes     string           `json:"notes,omitempty"`
}

func (a Attendance) GetID() string { return a.ID }

func (a *Attendance) UnmarshalJSON(data []byte) error {
	type alias Attendance
	if err := json.Unmarshal(data, (*alias)(a)); err != nil {
		return err
	}
	// some backends answer full timestamps
	if len(a.Date) > len(DateLayout) && a.Date[len(DateLayout)] == 'T' {
		a.Date = a.Date[:len(DateLayout)]
	}
	return fillID(&a.ID, data)
}

// RoleRef references a Role. The backend answers either the bare id or the populated role.
type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (r *RoleRef) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &r.ID)
	}
	var role Role
	if err := json.Unmarshal(data, &role); err != nil {
		return err
	}
	*r = RoleRef{ID: role.ID, Name: role.Name}
	return nil
}

// FacultyRef references a Faculty member, as bare id or populated object.
type FacultyRef struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (r *FacultyRef) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &r.ID)
	}
	var fac Faculty
	if err := json.Unmarshal(data, &fac); err != nil {
		return err
	}
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}
	if named.Name == "" {
		named.Name = fac.FullName()
	}
	*r = FacultyRef{ID: fac.ID, Name: named.Name, EmployeeID: fac.EmployeeID}
	return nil
}

func fillID(id *string, data []byte) error {
	if *id != "" {
		return nil
	}
	var aux struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*id = aux.ID
	return nil
}

func isJSONString(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return true
		}
		return false
	}
	return false
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
