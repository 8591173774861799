package main

import (
	"context"
	"fmt"
	"os"

	"witchcraft/internal/dispatch"
)

func main() {
	app := newApplication(os.Stdout, os.Stderr)
	if err := execute(context.Background(), app, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(dispatch.ExitLocalFailure)
	}
	os.Exit(app.code)
}
