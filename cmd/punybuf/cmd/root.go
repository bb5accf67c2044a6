// Package cmd implements the punybuf command-line front-end: argument
// parsing and file I/O the compiler proper treats as "external
// collaborators" (spec §1). Modeled on cuelang.org/go's cmd/cue/cmd package
// (Command wrapping *cobra.Command, mkRunE translating a run function into
// cobra's RunE while funneling errors through Stderr(), and panicError
// unwinding via recover instead of a bare os.Exit deep in the call stack).
package cmd

import (
	"context"
	"fmt"
	"os"
)

// MainTest is like Main; testscript.RunMain registers it as the "punybuf"
// subprocess command for the testdata/script txtar scripts.
func MainTest() int {
	return Main()
}

// Main runs the punybuf CLI and returns the process exit code.
func Main() int {
	if err := mainErr(context.Background(), os.Args[1:]); err != nil {
		if err != ErrPrintedError {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func mainErr(ctx context.Context, args []string) error {
	c := newRootCmd()
	c.SetArgs(args)
	return c.run(ctx)
}

func (c *Command) run(ctx context.Context) (err error) {
	defer recoverError(&err)
	if err := c.ExecuteContext(ctx); err != nil {
		return err
	}
	if c.hasErr {
		return ErrPrintedError
	}
	return nil
}

type panicError struct{ Err error }

func recoverError(err *error) {
	switch e := recover().(type) {
	case nil:
	case panicError:
		*err = e.Err
	default:
		panic(e)
	}
}
