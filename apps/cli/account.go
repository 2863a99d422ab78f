package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/session"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	email := fs.String("email", "", "The account's email. The password will be prompted next.")
	roleName := fs.String("role", "", "admin, faculty or student.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *roleName == "" {
		fs.Usage()
		return errHelp
	}
	role, ok := session.ParseRole(*roleName)
	if !ok {
		return errors.Errorf("%q: no such role", *roleName)
	}

	pwd, err := cli.promptPassword("Enter password")
	if err != nil {
		return err
	}
	creds := session.Credentials{Email: *email, Password: pwd}
	if err = cli.check(&creds); err != nil {
		return err
	}

	usr, err := cli.session.Login(ctx, creds, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Signed in as %s (%s). Start at %s\n", usr.DisplayName(), usr.Role, cli.guard.Dashboard())
	return nil
}

func (cli *commandLine) register(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("register")
	name := fs.String("name", "", "Your full name.")
	email := fs.String("email", "", "Your email. The password will be prompted next.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Choose a password")
	if err != nil {
		return err
	}
	reg := session.Registration{Name: *name, Email: *email, Password: pwd}
	if err = cli.check(&reg); err != nil {
		return err
	}

	usr, err := cli.session.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Welcome, %s. Signed in as %s\n", usr.DisplayName(), usr.Role)
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out")
	return nil
}

func (cli *commandLine) whoami() error {
	if err := cli.gate(nav.Profile); err != nil {
		return err
	}
	usr, ok := cli.session.CurrentUser()
	if !ok {
		return errSignInFirst
	}
	fmt.Fprintf(cli.out, "%s <%s>\nrole: %s\ndashboard: %s\n", usr.DisplayName(), usr.Email, usr.Role, cli.guard.Dashboard())
	return nil
}

func (cli *commandLine) changePassword(ctx context.Context) error {
	if err := cli.gate(nav.ChangePassword); err != nil {
		return err
	}

	var (
		form session.ChangePassword
		err  error
	)
	if form.CurrentPassword, err = cli.promptPassword("Current password"); err != nil {
		return err
	}
	if form.NewPassword, err = cli.promptPassword("New password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = cli.promptPassword("Confirm new password"); err != nil {
		return err
	}
	if err = cli.check(form); err != nil {
		return err
	}

	if err = cli.session.ChangePassword(ctx, form); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Password changed")
	return nil
}
