package main

import (
	"context"
	"flag"

	"github.com/manishrnl/authservice/internal/authctl"
)

func main() {
	serverAddr := flag.String("s", "http://localhost:8080", "auth server base URL")
	flag.Parse()

	app := authctl.NewApp(*serverAddr)
	app.Run(context.Background())
}
