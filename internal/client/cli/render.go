package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/divvault/internal/client/models"
)

var (
	brandPrimary = lipgloss.Color("#7C3AED")
	brandAccent  = lipgloss.Color("#10B981")
	brandError   = lipgloss.Color("#EF4444")
	textMuted    = lipgloss.Color("#6B7280")

	headerStyle  = lipgloss.NewStyle().Foreground(brandPrimary).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(brandAccent).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(brandError).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(textMuted)
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func renderRepo(repo *models.CredentialRepo) string {
	if len(repo.Credentials) == 0 {
		return dimStyle.Render("no credentials")
	}
	rows := make([][]string, 0, len(repo.Credentials))
	for _, c := range repo.Credentials {
		rows = append(rows, []string{c.ID, c.Key, c.Value})
	}
	title := repo.Name
	if title == "" {
		title = "credentials"
	}
	return headerStyle.Render(title) + "\n" + renderTable([]string{"ID", "KEY", "VALUE"}, rows)
}

func renderRefs(refs []models.Ref) string {
	rows := make([][]string, 0, len(refs))
	for _, r := range refs {
		rows = append(rows, []string{r.ID, r.Name})
	}
	return renderTable([]string{"ID", "NAME"}, rows)
}

func refNames(refs []models.Ref) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

func renderUsers(users []models.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Username, u.Role, refNames(u.OUs), refNames(u.Divisions)})
	}
	return renderTable([]string{"ID", "USERNAME", "ROLE", "OUS", "DIVISIONS"}, rows)
}

func renderDivisions(divisions []models.Division) string {
	rows := make([][]string, 0, len(divisions))
	for _, d := range divisions {
		rows = append(rows, []string{d.ID, d.Name, d.OU, d.CredentialRepo})
	}
	return renderTable([]string{"ID", "NAME", "OU", "REPO"}, rows)
}

func renderUser(u *models.User) string {
	return renderUsers([]models.User{*u})
}
