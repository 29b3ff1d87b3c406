package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/divvault/internal/client/client"
	"github.com/dmitrijs2005/divvault/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errAlreadyLoggedIn = errors.New("already logged in, log out first")

// resolveRef maps a name typed by the user to its id. Anything that is not
// a known name is returned unchanged and left to the server to validate.
func resolveRef(refs []models.Ref, arg string) string {
	for _, r := range refs {
		if strings.EqualFold(r.Name, arg) {
			return r.ID
		}
	}
	return arg
}

// Register asks for credentials and an optional OU and division, creates
// the account and keeps the returned session.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadyLoggedIn
	}

	userName, err := a.prompt("Enter username")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	req := client.RegisterRequest{Username: userName, Password: password}

	ou, err := a.prompt("OU (name or id, empty to skip)")
	if err != nil {
		return err
	}
	if ou != "" {
		refs, err := a.client.OUOptions(ctx)
		if err != nil {
			return err
		}
		req.OUID = resolveRef(refs, ou)
	}

	division, err := a.prompt("Division (name or id, empty to skip)")
	if err != nil {
		return err
	}
	if division != "" {
		refs, err := a.client.DivisionOptions(ctx)
		if err != nil {
			return err
		}
		req.DivisionID = resolveRef(refs, division)
	}

	if err := a.client.Register(ctx, req); err != nil {
		return err
	}

	a.println(successStyle.Render("Registered, logged in as " + userName))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := a.prompt("Enter username")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.client.Login(ctx, userName, password); err != nil {
		return err
	}

	s, _ := a.client.Session()
	a.println(successStyle.Render("Logged in as " + s.Username + " (" + s.Role + ")"))
	return nil
}

// Logout drops the session held by the client.
func (a *App) Logout(_ context.Context) error {
	a.client.Logout()
	a.println("Logged out")
	return nil
}

// Options lists the OUs and divisions offered at registration.
func (a *App) Options(ctx context.Context) error {
	ous, err := a.client.OUOptions(ctx)
	if err != nil {
		return err
	}
	divisions, err := a.client.DivisionOptions(ctx)
	if err != nil {
		return err
	}

	a.println(headerStyle.Render("OUs"))
	a.println(renderRefs(ous))
	a.println(headerStyle.Render("Divisions"))
	a.println(renderRefs(divisions))
	return nil
}
