package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

var (
	errNotLoggedIn = errors.New("login required")
	errAdminOnly   = errors.New("admin role required")
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	AddVehicle(ctx context.Context) error
	List(ctx context.Context) error
	ListAll(ctx context.Context) error
	Pending(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Search(ctx context.Context, fragment string) error
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	SetStatus(ctx context.Context, arg string) error
	Stats(ctx context.Context) error
	Metrics(ctx context.Context) error
	Documents(ctx context.Context) error
	Reset(ctx context.Context) error
}

type access int

const (
	anyone access = iota
	member
	admin
)

type command struct {
	access access
	arg    string
	run    func(ctx context.Context, a execIface, arg string) error
}

var commands = map[string]command{
	"signup":  {access: anyone, run: func(ctx context.Context, a execIface, _ string) error { return a.SignUp(ctx) }},
	"login":   {access: anyone, run: func(ctx context.Context, a execIface, _ string) error { return a.Login(ctx) }},
	"logout":  {access: member, run: func(ctx context.Context, a execIface, _ string) error { return a.Logout(ctx) }},
	"add":     {access: member, run: func(ctx context.Context, a execIface, _ string) error { return a.AddVehicle(ctx) }},
	"list":    {access: member, run: func(ctx context.Context, a execIface, _ string) error { return a.List(ctx) }},
	"show":    {access: member, arg: "<id>", run: func(ctx context.Context, a execIface, id string) error { return a.Show(ctx, id) }},
	"search":  {access: member, arg: "<plate>", run: func(ctx context.Context, a execIface, f string) error { return a.Search(ctx, f) }},
	"stats":   {access: member, run: func(ctx context.Context, a execIface, _ string) error { return a.Stats(ctx) }},
	"all":     {access: admin, run: func(ctx context.Context, a execIface, _ string) error { return a.ListAll(ctx) }},
	"pending": {access: admin, run: func(ctx context.Context, a execIface, _ string) error { return a.Pending(ctx) }},
	"approve": {access: admin, arg: "<id>", run: func(ctx context.Context, a execIface, id string) error { return a.Approve(ctx, id) }},
	"reject":  {access: admin, arg: "<id>", run: func(ctx context.Context, a execIface, id string) error { return a.Reject(ctx, id) }},
	"status":  {access: admin, arg: "<id> <approved|rejected>", run: func(ctx context.Context, a execIface, arg string) error { return a.SetStatus(ctx, arg) }},
	"metrics": {access: admin, run: func(ctx context.Context, a execIface, _ string) error { return a.Metrics(ctx) }},
	"docs":    {access: admin, run: func(ctx context.Context, a execIface, _ string) error { return a.Documents(ctx) }},
	"reset":   {access: admin, run: func(ctx context.Context, a execIface, _ string) error { return a.Reset(ctx) }},
}

// prompt renders the input prompt, with the session status when there is one.
func prompt(status string) string {
	if status == "" {
		return "vr> "
	}
	return "vr " + status + "> "
}

func helpText(a execIface) string {
	switch {
	case a.isAdmin():
		return "Available commands: list, all, pending, show <id>, search <plate>, approve <id>, reject <id>, status <id> <approved|rejected>, stats, metrics, docs, reset, logout, exit"
	case a.isLoggedIn():
		return "Available commands: add, list, show <id>, search <plate>, stats, logout, exit"
	}
	return "Available commands: signup, login, exit"
}

// runREPL starts a simple read-eval-print loop for the registry client.
//
// It reads a line from r, parses the first token as the command and the
// rest as its argument, and dispatches to methods on 'a'. Commands are gated
// by session and role. Handler errors are printed inline and the loop goes
// on. The loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printFn(prompt(statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		if ctx.Err() != nil {
			return
		}

		name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if name == "" {
			continue
		}

		switch name {
		case "help":
			printlnFn(helpText(a))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}

		switch {
		case cmd.access >= member && !a.isLoggedIn():
			printlnFn("error:", errNotLoggedIn)
			continue
		case cmd.access == admin && !a.isAdmin():
			printlnFn("error:", errAdminOnly)
			continue
		case cmd.arg != "" && arg == "":
			printlnFn(fmt.Sprintf("Usage: %s %s", name, cmd.arg))
			continue
		}

		if err := cmd.run(ctx, a, arg); err != nil {
			printlnFn("error:", err)
		}
	}
}
