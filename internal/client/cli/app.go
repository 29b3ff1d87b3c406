package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/divvault/internal/client/client"
	"github.com/dmitrijs2005/divvault/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		client: client.NewVaultClient(c.ServerEndpointAddr, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run greets the user and blocks in the REPL until exit or end of input.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the vault CLI (type 'help' for commands)")

	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("server "+a.config.ServerEndpointAddr+" is not reachable: "+err.Error()))
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.client.Session()
	return ok
}

func (a *App) isAdmin() bool {
	s, ok := a.client.Session()
	return ok && s.IsAdmin()
}

func (a *App) status() string {
	s, ok := a.client.Session()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s %s)", s.Username, s.Role)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) prompt(text string) (string, error) {
	return getSimpleText(a.reader, text, a.out)
}
