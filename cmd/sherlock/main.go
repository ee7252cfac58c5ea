// Package main provides the entry point for the sherlock config file finder.
package main

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/fang"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

// Execute runs the root command with fang's styled help and signal handling.
// Errors are printed once here.
func Execute(ctx context.Context) error {
	v, c, _ := buildStamp()
	err := fang.Execute(ctx, rootCmd,
		fang.WithVersion(v),
		fang.WithCommit(c),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			printErrorTo(w, "Investigation failed: %v", err)
		}),
	)
	return err
}
