package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/whzard/punybuf/internal/errors"
)

// Command wraps *cobra.Command so run functions can track whether they've
// already written an error to stderr, mirroring cuelang.org/go's own
// cmd.Command/errWriter split: Cobra's own error return and "print errors
// twice" behavior is suppressed in favor of explicit diagnostic printing
// through Stderr().
type Command struct {
	*cobra.Command
	hasErr bool
}

type runFunction func(c *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cc *cobra.Command, args []string) error {
		c.Command = cc
		err := f(c, args)
		if err != nil {
			exitOnErr(c, err)
		}
		return err
	}
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = true
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns the writer every diagnostic must go through; os.Stderr is
// never written to directly so hasErr stays accurate.
func (c *Command) Stderr() io.Writer { return (*errWriter)(c) }

// ErrPrintedError is returned by Run/RunE once a diagnostic has already
// been written to stderr, so main doesn't print the error a second time.
var ErrPrintedError = fmt.Errorf("terminating because of errors")

// exitOnErr renders err to c's Stderr. *errors.List gets the full
// multi-panel treatment; anything else is printed as a single line.
func exitOnErr(c *Command, err error) {
	if err == nil || err == ErrPrintedError {
		return
	}
	if list, ok := err.(*errors.List); ok {
		printErrorList(c.Stderr(), list)
		return
	}
	fmt.Fprintln(c.Stderr(), err)
}

func printErrorList(w io.Writer, list *errors.List) {
	for _, e := range list.Errs() {
		fmt.Fprintf(w, "%s: %s: %s\n", e.Position(), e.Severity(), e.Error())
		for _, p := range e.Panels() {
			fmt.Fprintf(w, "  %s: %s (%s)\n", p.Severity, p.Content, p.Span)
		}
	}
}
