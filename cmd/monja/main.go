package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/monja/pkg/style"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprint(os.Stderr, style.RenderError(err))
		os.Exit(1)
	}
}
