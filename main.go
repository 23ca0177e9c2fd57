package main

import (
	"context"
	"os"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)

	ctx := shutdownContext(context.Background(), a.bootstrapLogger())

	if err := a.newRootCmd().ExecuteContext(ctx); err != nil {
		exitOnError(err)
	}
}
