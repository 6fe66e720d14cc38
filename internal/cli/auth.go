package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp prompts for email, password and full name and creates a regular
// account, which becomes the current session.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}

	acc, err := a.identity.SignUp(ctx, email, string(password), fullName)
	if err != nil {
		return err
	}

	_, _ = a.loadWorkingSet(ctx, acc)
	fmt.Fprintf(a.out, "Account created, welcome %s\n", displayName(acc))
	return nil
}

// Login prompts for credentials and starts a session. The working set is
// reloaded for the new account.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.identity.LogIn(ctx, email, string(password))
	if err != nil {
		return err
	}

	_, _ = a.loadWorkingSet(ctx, acc)
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", displayName(acc), acc.Role)
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.identity.LogOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
