package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/divvault/internal/client/client"
	"github.com/dmitrijs2005/divvault/internal/client/models"
	"github.com/google/uuid"
)

var errNothingToUpdate = errors.New("nothing to update")

func usage(args []string, n int, text string) error {
	if len(args) != n {
		return fmt.Errorf("usage: %s", text)
	}
	return nil
}

// resolveDivision accepts a division id or name.
func (a *App) resolveDivision(ctx context.Context, arg string) (string, error) {
	if _, err := uuid.Parse(arg); err == nil {
		return arg, nil
	}
	refs, err := a.client.DivisionOptions(ctx)
	if err != nil {
		return "", err
	}
	return resolveRef(refs, arg), nil
}

func (a *App) Credentials(ctx context.Context, args []string) error {
	if err := usage(args, 1, "creds <division>"); err != nil {
		return err
	}
	divisionID, err := a.resolveDivision(ctx, args[0])
	if err != nil {
		return err
	}

	repo, err := a.client.GetCredentials(ctx, divisionID)
	if err != nil {
		return err
	}
	a.println(renderRepo(repo))
	return nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	if err := usage(args, 1, "add <division>"); err != nil {
		return err
	}
	divisionID, err := a.resolveDivision(ctx, args[0])
	if err != nil {
		return err
	}

	key, err := a.prompt("Key")
	if err != nil {
		return err
	}
	value, err := a.prompt("Value")
	if err != nil {
		return err
	}

	repo, err := a.client.AddCredential(ctx, divisionID, key, value)
	if err != nil {
		return err
	}
	a.println(successStyle.Render("Credential added"))
	a.println(renderRepo(repo))
	return nil
}

func (a *App) Update(ctx context.Context, args []string) error {
	if err := usage(args, 2, "update <division> <credential>"); err != nil {
		return err
	}
	divisionID, err := a.resolveDivision(ctx, args[0])
	if err != nil {
		return err
	}

	key, err := a.prompt("New key (empty to keep)")
	if err != nil {
		return err
	}
	value, err := a.prompt("New value (empty to keep)")
	if err != nil {
		return err
	}
	if key == "" && value == "" {
		return errNothingToUpdate
	}

	repo, err := a.client.UpdateCredential(ctx, divisionID, models.CredentialUpdate{CredentialID: args[1], Key: key, Value: value})
	if err != nil {
		return err
	}
	a.println(successStyle.Render("Credential updated"))
	a.println(renderRepo(repo))
	return nil
}

// Edit reads several "<credential id> key=value" lines and applies them one
// by one. Lines that do not parse abort the edit before anything is sent.
// Failed updates are listed so they can be retried.
func (a *App) Edit(ctx context.Context, args []string) error {
	if err := usage(args, 1, "edit <division>"); err != nil {
		return err
	}
	divisionID, err := a.resolveDivision(ctx, args[0])
	if err != nil {
		return err
	}

	repo, err := a.client.GetCredentials(ctx, divisionID)
	if err != nil {
		return err
	}
	a.println(renderRepo(repo))

	lines, err := GetLines(a.reader, `One "<credential id> key=value" per line, leave a side of "=" empty to keep it`, a.out)
	if err != nil {
		return err
	}

	updates := make([]models.CredentialUpdate, 0, len(lines))
	for _, line := range lines {
		u, err := models.ParseCredentialUpdate(line)
		if err != nil {
			return err
		}
		updates = append(updates, u)
	}
	if len(updates) == 0 {
		return errNothingToUpdate
	}

	repo, results := a.client.BatchUpdate(ctx, divisionID, updates)
	if repo != nil {
		a.println(renderRepo(repo))
	}

	failed := client.Failed(results)
	if len(failed) == 0 {
		a.println(successStyle.Render(fmt.Sprintf("%d credentials updated", len(results))))
		return nil
	}
	for _, r := range failed {
		a.println(errorStyle.Render(fmt.Sprintf("%s: %v", r.CredentialID, r.Err)))
	}
	return fmt.Errorf("%d of %d updates failed", len(failed), len(results))
}
