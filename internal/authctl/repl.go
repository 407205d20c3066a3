package authctl

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Refresh(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads a line per iteration, takes the first token as the command
// and dispatches to methods on 'a'. The loop exits on scanner EOF or when the
// user types "exit" or "quit". Command errors are reported by the handlers
// themselves and ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("auth> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: refresh, whoami, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
