// Command filemeta reports name, size, creation time and checksum for a set of files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/idelchi/filemeta/internal/cli"
)

// version is set by the build via -ldflags.
//
//nolint:gochecknoglobals // Set at build time
var version = "unknown - unofficial & generated by unknown"

func main() {
	cmd, err := cli.New(version).Command()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := fang.Execute(context.Background(), cmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}
