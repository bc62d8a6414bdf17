package main

import (
	"errors"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	rcli "github.com/reviewgo/reviewgo/cli"
)

// Version information, set by goreleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	c := rcli.New()
	c.SetVersion(version, commit, date)
	err := c.Run(os.Args)
	if err == nil {
		return
	}

	// Tool failures carry their exit code and have already been reported.
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	log.Fatal(err)
}
