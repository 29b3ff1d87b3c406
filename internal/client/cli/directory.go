package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/divvault/internal/client/models"
)

func (a *App) Users(ctx context.Context) error {
	users, err := a.client.ListUsers(ctx)
	if err != nil {
		return err
	}
	a.println(renderUsers(users))
	return nil
}

func (a *App) OUs(ctx context.Context) error {
	ous, err := a.client.ListOUs(ctx)
	if err != nil {
		return err
	}
	a.println(renderRefs(ous))
	return nil
}

func (a *App) Divisions(ctx context.Context) error {
	divisions, err := a.client.ListDivisions(ctx)
	if err != nil {
		return err
	}
	a.println(renderDivisions(divisions))
	return nil
}

// membership asks for the OU and division of an assign/unassign. Names are
// resolved against the registration option lists.
func (a *App) membership(ctx context.Context) (ouID, divisionID string, err error) {
	ou, err := a.prompt("OU (name or id, empty to skip)")
	if err != nil {
		return "", "", err
	}
	if ou != "" {
		refs, err := a.client.OUOptions(ctx)
		if err != nil {
			return "", "", err
		}
		ouID = resolveRef(refs, ou)
	}

	division, err := a.prompt("Division (name or id, empty to skip)")
	if err != nil {
		return "", "", err
	}
	if division != "" {
		if divisionID, err = a.resolveDivision(ctx, division); err != nil {
			return "", "", err
		}
	}
	return ouID, divisionID, nil
}

func (a *App) changeMembership(ctx context.Context, args []string, cmd string,
	op func(ctx context.Context, userID, ouID, divisionID string) (*models.User, error)) error {
	if err := usage(args, 1, cmd+" <user>"); err != nil {
		return err
	}
	ouID, divisionID, err := a.membership(ctx)
	if err != nil {
		return err
	}

	user, err := op(ctx, args[0], ouID, divisionID)
	if err != nil {
		return err
	}
	a.println(renderUser(user))
	return nil
}

func (a *App) Assign(ctx context.Context, args []string) error {
	return a.changeMembership(ctx, args, "assign", a.client.Assign)
}

func (a *App) Unassign(ctx context.Context, args []string) error {
	return a.changeMembership(ctx, args, "unassign", a.client.Unassign)
}

func (a *App) Role(ctx context.Context, args []string) error {
	if err := usage(args, 2, "role <user> normal|management|admin"); err != nil {
		return err
	}
	user, err := a.client.ChangeRole(ctx, args[0], strings.ToLower(args[1]))
	if err != nil {
		return err
	}
	a.println(renderUser(user))
	return nil
}
