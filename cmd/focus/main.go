package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/albibenni/focus/internal/focus/domain"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "focus"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr, loadConfig: loadConfig}
	root, err := c.newRootCommand()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	root.SetArgs(args)

	err = root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrInput) {
			fmt.Fprintf(stderr, "Run '%s help' for usage.\n", appName)
		}
		var serr *domain.SessionError
		if errors.As(err, &serr) && serr.HostFileModified() {
			fmt.Fprintf(stderr, "The host file may still contain blocked entries; run '%s restore' to repair it.\n", appName)
		}
	}
	return exitCode(err)
}

// exitCode maps the error returned by a command to the process exit status.
//
//	0 success
//	1 input, usage or configuration error
//	2 session failed taking the snapshot; nothing was changed
//	3 session failed writing the blocked host file
//	4 session failed restoring the host file; it is left blocked
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var serr *domain.SessionError
	if errors.As(err, &serr) {
		switch serr.Stage {
		case domain.StageSnapshot:
			return 2
		case domain.StageApply:
			return 3
		case domain.StageRestore:
			return 4
		}
	}
	return 1
}
