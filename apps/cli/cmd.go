package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/school"
	"github.com/SaurabhAlex/school-management-web/core/session"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errSignInFirst = errors.New("not signed in, run: schoolctl login -email EMAIL -role ROLE")
	errForbidden   = errors.New("not available to your role")
)

type commandLine struct {
	out        io.Writer
	session    session.Store
	set        *resource.Set
	api        *schoolapi.Client
	guard      *nav.Guard
	validate   *validator.Validate
	translator ut.Translator
	today      func() string
}

func newCommandLine(out io.Writer, storage session.Storage, api *schoolapi.Client, log core.Logger, opts ...resource.Option) *commandLine {
	if log == nil {
		log = core.NopLogger{}
	}
	sess := session.NewStore(storage, api.Auth(), log)
	api = api.WithSession(sess)
	validate, translator := school.NewValidator()

	return &commandLine{
		out:        out,
		session:    sess,
		set:        resource.NewSet(api.SetFuncs(), opts...),
		api:        api,
		guard:      nav.NewGuard(sess),
		validate:   validate,
		translator: translator,
		today:      func() string { return time.Now().Format(school.DateLayout) },
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL -role admin|faculty|student   - sign in (the password is prompted)")
	fmt.Fprintln(cli.out, "  register -name NAME -email EMAIL                  - create a student account and sign in")
	fmt.Fprintln(cli.out, "  logout                                            - sign out")
	fmt.Fprintln(cli.out, "  whoami                                            - show the signed in user")
	fmt.Fprintln(cli.out, "  passwd                                            - change your password")
	fmt.Fprintln(cli.out, "  list students|faculty|classes|roles|attendance [-date YYYY-MM-DD]")
	fmt.Fprintln(cli.out, "  add-student -first NAME -last NAME -mobile NUMBER [-email EMAIL]")
	fmt.Fprintln(cli.out, "  add-role -name NAME -description TEXT")
	fmt.Fprintln(cli.out, "  mark-attendance -student ID -status present|absent [-date YYYY-MM-DD] [-notes TEXT]")
	fmt.Fprintln(cli.out, "  delete students|faculty|classes|roles -id ID")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "register":
		return cli.register(ctx, rest)
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami()
	case "passwd":
		return cli.changePassword(ctx)
	case "list":
		return cli.list(ctx, rest)
	case "add-student":
		return cli.addStudent(ctx, rest)
	case "add-role":
		return cli.addRole(ctx, rest)
	case "mark-attendance":
		return cli.markAttendance(ctx, rest)
	case "delete":
		return cli.delete(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// gate applies the navigation policy of route to the command.
func (cli *commandLine) gate(route string) error {
	d := cli.guard.Check(route)
	switch {
	case d.Allowed():
		return nil
	case d.From != "":
		return errSignInFirst
	default:
		return errors.Wrap(errForbidden, route)
	}
}

func (cli *commandLine) check(form interface {
	Validate(*validator.Validate) error
}) error {
	return core.ValidationFromValidator(form.Validate(cli.validate), cli.translator)
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) promptPassword(label string) (string, error) {
	fmt.Fprint(cli.out, label+":")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// describe returns err as told to the user, with one line per invalid field.
func describe(err error) string {
	if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && len(vErr.Fields) > 0 {
		lines := []string{vErr.Error()}
		for _, f := range vErr.Fields {
			lines = append(lines, "  "+f.Field+": "+f.Error)
		}
		return strings.Join(lines, "\n")
	}
	return core.ErrorMessage(err, err.Error())
}
