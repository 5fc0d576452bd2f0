package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/bt/internal"
	"github.com/valter-silva-au/bt/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath, rootErr := app.ResolveBasePath()

	a, err := app.NewApp(basePath, rootErr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing bt: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	_ = a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
