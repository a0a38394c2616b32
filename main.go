package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func main() {
	ctx, stop := shutdownContext(context.Background(), slog.Default())
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		exitOnError(os.Stderr, err)
	}
}

// exitOnError prints a user-friendly error message, plus a hint when the
// failure has a well-known remedy, and exits.
func exitOnError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}

	os.Exit(1)
}
