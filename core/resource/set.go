package resource

import (
	"context"
	"sync"

	"github.com/SaurabhAlex/school-management-web/core/school"
)

// resource keys
const (
	StudentsKey   = "students"
	FacultyKey    = "faculty"
	ClassesKey    = "classes"
	RolesKey      = "roles"
	AttendanceKey = "attendance"
)

// MaxAttendanceDays bounds the days whose attendance a Set keeps; the least recently used day is dropped first.
const MaxAttendanceDays = 31

type (
	Students   = Resource[school.Student, school.NewStudent, school.UpdateStudent]
	Faculty    = Resource[school.Faculty, school.NewFaculty, school.UpdateFaculty]
	Classes    = Resource[school.Class, school.NewClass, school.UpdateClass]
	Roles      = Resource[school.Role, school.NewRole, school.UpdateRole]
	Attendance = Resource[school.Attendance, school.NewAttendance, school.UpdateAttendance]

	AttendanceFuncs = Funcs[school.Attendance, school.NewAttendance, school.UpdateAttendance]
)

// AttendanceAPI is the attendance backend. Attendance is listed per day and cannot be deleted.
type AttendanceAPI interface {
	List(ctx context.Context, date string) ([]school.Attendance, error)
	Create(ctx context.Context, data school.NewAttendance) (school.Attendance, error)
	Update(ctx context.Context, id string, data school.UpdateAttendance) (school.Attendance, error)
}

// SetFuncs are the backend calls of every entity of a session.
type SetFuncs struct {
	Students   Funcs[school.Student, school.NewStudent, school.UpdateStudent]
	Faculty    Funcs[school.Faculty, school.NewFaculty, school.UpdateFaculty]
	Classes    Funcs[school.Class, school.NewClass, school.UpdateClass]
	Roles      Funcs[school.Role, school.NewRole, school.UpdateRole]
	Attendance AttendanceAPI
}

// Set holds the resources of one session.
type Set struct {
	Students *Students
	Faculty  *Faculty
	Classes  *Classes
	Roles    *Roles

	attendanceAPI AttendanceAPI
	opts          []Option

	mu         sync.Mutex
	attendance map[string]*Attendance
	days       []string // least recently used first
}

func NewSet(funcs SetFuncs, opts ...Option) *Set {
	return &Set{
		Students:      New(StudentsKey, funcs.Students, opts...),
		Faculty:       New(FacultyKey, funcs.Faculty, opts...),
		Classes:       New(ClassesKey, funcs.Classes, opts...),
		Roles:         New(RolesKey, funcs.Roles, opts...),
		attendanceAPI: funcs.Attendance,
		opts:          opts,
		attendance:    make(map[string]*Attendance),
	}
}

// Attendance returns the resource of the attendance of date (YYYY-MM-DD).
func (s *Set) Attendance(date string) *Attendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.attendance[date]; ok {
		s.touchLocked(date)
		return res
	}

	var funcs AttendanceFuncs
	if api := s.attendanceAPI; api != nil {
		funcs = AttendanceFuncs{
			List:   func(ctx context.Context) ([]school.Attendance, error) { return api.List(ctx, date) },
			Create: api.Create,
			Update: api.Update,
		}
	}
	res := New(AttendanceKey+":"+date, funcs, s.opts...)
	s.attendance[date] = res
	s.days = append(s.days, date)
	if len(s.days) > MaxAttendanceDays {
		delete(s.attendance, s.days[0])
		s.days = s.days[1:]
	}
	return res
}

func (s *Set) touchLocked(date string) {
	for i, d := range s.days {
		if d == date {
			s.days = append(append(s.days[:i:i], s.days[i+1:]...), date)
			return
		}
	}
}

// Reset drops every cached list.
func (s *Set) Reset() {
	s.Students.Reset()
	s.Faculty.Reset()
	s.Classes.Reset()
	s.Roles.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance = make(map[string]*Attendance)
	s.days = nil
}
