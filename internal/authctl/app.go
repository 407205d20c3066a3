package authctl

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

type App struct {
	client *Client
	pair   *TokenPair
	reader *bufio.Reader
	out    *os.File
}

func NewApp(serverAddr string) *App {
	return &App{
		client: NewClient(serverAddr),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.pair != nil
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "logged in"
	}
	return "logged out"
}

func (a *App) Signup(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	pair, err := a.client.Signup(ctx, username, email, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	a.pair = pair
	fmt.Fprintln(a.out, "Account created, you are logged in.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	pair, err := a.client.Login(ctx, username, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	a.pair = pair
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	pair, err := a.client.Refresh(ctx, a.pair.RefreshToken)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		// A rejected refresh token means the session is gone.
		a.pair = nil
		return err
	}
	a.pair = pair
	fmt.Fprintln(a.out, "Tokens refreshed.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	username, err := a.client.Me(ctx, a.pair.AccessToken)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintln(a.out, username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.pair = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
