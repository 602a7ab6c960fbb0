package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dehvCurtis/rustdefend/internal/app"
	"github.com/dehvCurtis/rustdefend/internal/cli"
)

func main() {
	err := app.BuildRoot().Execute()
	if err == nil {
		os.Exit(0)
	}
	if errors.Is(err, cli.ErrFindingsPresent) {
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "rustdefend:", err)
	os.Exit(2)
}
