package main

import (
	"os"

	"github.com/felixgeelhaar/covtable/internal/cli"
	"github.com/felixgeelhaar/covtable/internal/logging"
)

func main() {
	logger := logging.New(os.Stderr, false)
	code := cli.Run(os.Args, os.Stdout, os.Stderr, cli.BuildService(os.Stdout, logger))
	_ = logger.Sync()
	os.Exit(code)
}
