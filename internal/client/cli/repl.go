package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/divvault/internal/client/client"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App implements it.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Options(ctx context.Context) error

	Credentials(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error

	Users(ctx context.Context) error
	OUs(ctx context.Context) error
	Divisions(ctx context.Context) error
	Assign(ctx context.Context, args []string) error
	Unassign(ctx context.Context, args []string) error
	Role(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, options, exit"
	helpLoggedIn  = "Available commands: creds <division>, add <division>, update <division> <credential>, edit <division>, options, logout, exit"
	helpAdmin     = "Admin commands: users, ous, divisions, assign <user>, unassign <user>, role <user> <role>"
)

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. Divisions may be given by id or by name.
//
//	Not logged in:
//	  - help            show available commands
//	  - register        create an account (optionally in one OU and division)
//	  - login           authenticate
//	  - options         list OUs and divisions offered at registration
//	  - exit | quit     leave the program
//
//	Logged in:
//	  - creds  <division>                 show a division's credentials
//	  - add    <division>                 add a credential
//	  - update <division> <credential>    change key and/or value of one credential
//	  - edit   <division>                 update several credentials, one "<id> key=value" per line
//	  - logout
//
//	Admin:
//	  - users, ous, divisions
//	  - assign <user>, unassign <user>    change OU/division membership
//	  - role <user> <role>                set normal, management or admin
//
// Command errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vault%s> ", prefixed(statusFn())))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn(helpLoggedIn)
				printlnFn(helpAdmin)
			case a.isLoggedIn():
				printlnFn(helpLoggedIn)
			default:
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "options":
			cmdErr = a.Options(ctx)

		case "creds", "c":
			cmdErr = a.Credentials(ctx, args)
		case "add":
			cmdErr = a.Add(ctx, args)
		case "update":
			cmdErr = a.Update(ctx, args)
		case "edit":
			cmdErr = a.Edit(ctx, args)

		case "users":
			cmdErr = a.Users(ctx)
		case "ous":
			cmdErr = a.OUs(ctx)
		case "divisions":
			cmdErr = a.Divisions(ctx)
		case "assign":
			cmdErr = a.Assign(ctx, args)
		case "unassign":
			cmdErr = a.Unassign(ctx, args)
		case "role":
			cmdErr = a.Role(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(errorStyle.Render("Error: " + cmdErr.Error()))
			if errors.Is(cmdErr, client.ErrUnauthorized) && cmd != "login" {
				printlnFn("Please log in again.")
			}
		}

		if err != nil {
			return
		}
	}
}

func prefixed(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
