package schoolapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/SaurabhAlex/school-management-web/core/school"
)

// AttendanceAPI lists attendance per day. Records cannot be deleted.
type AttendanceAPI struct {
	c *Client
}

func (c *Client) Attendance() *AttendanceAPI { return &AttendanceAPI{c: c} }

// List returns the attendance of date (YYYY-MM-DD).
func (api *AttendanceAPI) List(ctx context.Context, date string) ([]school.Attendance, error) {
	data, err := api.c.do(ctx, http.MethodGet, "/attendance?"+url.Values{"date": {date}}.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[school.Attendance](data, "attendance")
}

func (api *AttendanceAPI) Create(ctx context.Context, na school.NewAttendance) (school.Attendance, error) {
	data, err := api.c.do(ctx, http.MethodPost, "/attendance", na)
	if err != nil {
		return school.Attendance{}, err
	}
	return decodeOne[school.Attendance](data, "attendance")
}

func (api *AttendanceAPI) Update(ctx context.Context, id string, ua school.UpdateAttendance) (school.Attendance, error) {
	if id == "" {
		return school.Attendance{}, errMissingID
	}
	data, err := api.c.do(ctx, http.MethodPut, "/attendance/"+url.PathEscape(id), ua)
	if err != nil {
		return school.Attendance{}, err
	}
	return decodeOne[school.Attendance](data, "attendance")
}

// Report is the attendance history of one student.
type Report struct {
	StudentID string              `json:"studentId"`
	Records   []school.Attendance `json:"records"`
	Present   int                 `json:"present"`
	Absent    int                 `json:"absent"`
}

// Rate is the share of days present, 0 when nothing was recorded.
func (r Report) Rate() float64 {
	if total := r.Present + r.Absent; total > 0 {
		return float64(r.Present) / float64(total)
	}
	return 0
}

func (api *AttendanceAPI) Report(ctx context.Context, studentID string) (Report, error) {
	if studentID == "" {
		return Report{}, errMissingID
	}
	data, err := api.c.do(ctx, http.MethodGet, "/attendance/student/"+url.PathEscape(studentID), nil)
	if err != nil {
		return Report{}, err
	}
	records, err := decodeList[school.Attendance](data, "attendance")
	if err != nil {
		return Report{}, err
	}

	rep := Report{StudentID: studentID, Records: records}
	for _, rec := range records {
		switch rec.Status {
		case school.Present:
			rep.Present++
		case school.Absent:
			rep.Absent++
		}
	}
	return rep, nil
}
