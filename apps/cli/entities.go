package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

// entityRoutes maps the entities of the command line to the portal routes guarding them.
var entityRoutes = map[string]string{
	resource.StudentsKey:   nav.FacultyStudents,
	resource.FacultyKey:    nav.Faculty,
	resource.ClassesKey:    nav.Classes,
	resource.RolesKey:      nav.Roles,
	resource.AttendanceKey: nav.Attendance,
}

func (cli *commandLine) entity(name string) (string, error) {
	name = strings.ToLower(name)
	if _, ok := entityRoutes[name]; !ok {
		return "", errors.Errorf("%q: no such entity", name)
	}
	return name, cli.gate(entityRoutes[name])
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

func (cli *commandLine) list(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	fs := cli.newFlagSet("list")
	date := fs.String("date", "", "The day of the attendance, YYYY-MM-DD. Today by default.")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	name, err := cli.entity(args[0])
	if err != nil {
		return err
	}

	tw := cli.table()
	switch name {
	case resource.StudentsKey:
		err = cli.listStudents(ctx, tw)
	case resource.FacultyKey:
		err = cli.listFaculty(ctx, tw)
	case resource.ClassesKey:
		err = cli.listClasses(ctx, tw)
	case resource.RolesKey:
		err = cli.listRoles(ctx, tw)
	case resource.AttendanceKey:
		if *date == "" {
			*date = cli.today()
		} else if _, err = time.Parse(school.DateLayout, *date); err != nil {
			return errors.Errorf("%q: date must be of form YYYY-MM-DD", *date)
		}
		err = cli.listAttendance(ctx, tw, *date)
	}
	if err != nil {
		return err
	}
	return tw.Flush()
}

func (cli *commandLine) listStudents(ctx context.Context, tw *tabwriter.Writer) error {
	students, err := cli.set.Students.Items(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tNAME\tMOBILE\tEMAIL")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.FullName(), s.MobileNumber, s.Email)
	}
	return nil
}

func (cli *commandLine) listFaculty(ctx context.Context, tw *tabwriter.Writer) error {
	faculty, err := cli.set.Faculty.Items(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tNAME\tEMAIL\tDEPARTMENT\tROLE")
	for _, f := range faculty {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.EmployeeID, f.FullName(), f.Email, f.Department, f.Role.Name)
	}
	return nil
}

func (cli *commandLine) listClasses(ctx context.Context, tw *tabwriter.Writer) error {
	classes, err := cli.set.Classes.Items(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tCLASS\tYEAR\tTEACHER\tCAPACITY")
	for _, c := range classes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Label(), c.AcademicYear, c.ClassTeacher.Name, c.Capacity)
	}
	return nil
}

func (cli *commandLine) listRoles(ctx context.Context, tw *tabwriter.Writer) error {
	roles, err := cli.set.Roles.Items(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, r := range roles {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.Description)
	}
	return nil
}

// listAttendance prints the records of date next to the names of their students.
func (cli *commandLine) listAttendance(ctx context.Context, tw *tabwriter.Writer, date string) error {
	var (
		students []school.Student
		records  []school.Attendance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = cli.set.Students.Items(gctx)
		return err
	})
	g.Go(func() (err error) {
		records, err = cli.set.Attendance(date).Items(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FullName()
	}
	fmt.Fprintf(tw, "ID\tSTUDENT\tNAME\tSTATUS\tNOTES\t(%s)\n", date)
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", rec.ID, rec.StudentID, names[rec.StudentID], rec.Status, rec.Notes)
	}
	return nil
}

func (cli *commandLine) addStudent(ctx context.Context, args []string) error {
	if err := cli.gate(nav.FacultyStudents); err != nil {
		return err
	}
	fs := cli.newFlagSet("add-student")
	var form school.NewStudent
	fs.StringVar(&form.FirstName, "first", "", "First name.")
	fs.StringVar(&form.LastName, "last", "", "Last name.")
	fs.StringVar(&form.MobileNumber, "mobile", "", "10-digit mobile number.")
	fs.StringVar(&form.Email, "email", "", "Email (optional).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cli.check(&form); err != nil {
		return err
	}

	stud, err := cli.set.Students.Create(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Student added: %s %s\n", stud.ID, stud.FullName())
	return nil
}

func (cli *commandLine) addRole(ctx context.Context, args []string) error {
	if err := cli.gate(nav.Roles); err != nil {
		return err
	}
	fs := cli.newFlagSet("add-role")
	var form school.NewRole
	fs.StringVar(&form.Name, "name", "", "Role name.")
	fs.StringVar(&form.Description, "description", "", "What the role is about.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cli.check(&form); err != nil {
		return err
	}

	role, err := cli.set.Roles.Create(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Role added: %s %s\n", role.ID, role.Name)
	return nil
}

func (cli *commandLine) markAttendance(ctx context.Context, args []string) error {
	if err := cli.gate(nav.Attendance); err != nil {
		return err
	}
	fs := cli.newFlagSet("mark-attendance")
	var form school.NewAttendance
	fs.StringVar(&form.StudentID, "student", "", "The student's id.")
	fs.StringVar(&form.Date, "date", cli.today(), "The day, YYYY-MM-DD.")
	status := fs.String("status", "", "present or absent.")
	fs.StringVar(&form.Notes, "notes", "", "Notes (optional).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form.Status = school.AttendanceStatus(*status)
	if err := cli.check(&form); err != nil {
		return err
	}

	rec, err := cli.set.Attendance(form.Date).Create(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Attendance marked: %s %s %s\n", rec.Date, rec.StudentID, rec.Status)
	return nil
}

func (cli *commandLine) delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	fs := cli.newFlagSet("delete")
	id := fs.String("id", "", "The id of the record to delete.")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	name, err := cli.entity(args[0])
	if err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}

	switch name {
	case resource.StudentsKey:
		err = cli.set.Students.Delete(ctx, *id)
	case resource.FacultyKey:
		err = cli.set.Faculty.Delete(ctx, *id)
	case resource.ClassesKey:
		err = cli.set.Classes.Delete(ctx, *id)
	case resource.RolesKey:
		err = cli.set.Roles.Delete(ctx, *id)
	default:
		err = errors.Wrap(resource.ErrUnsupported, name)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Deleted %s %s\n", name, *id)
	return nil
}
