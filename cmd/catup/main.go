package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/catup/internal/cli"
	catuperrors "github.com/matzehuels/catup/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := cli.New(os.Stdout, os.Stderr)
	err := c.Execute(ctx, os.Args[1:])
	cancel()

	os.Exit(catuperrors.ExitCode(err))
}
