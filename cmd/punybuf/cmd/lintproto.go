package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whzard/punybuf/internal/protobridge"
)

// newLintProtoCmd wires the read-only .proto descriptive bridge (see
// internal/protobridge) into the CLI as a hidden helper command: it never
// writes a .pbd file, it only summarizes an existing .proto so a human can
// hand-author the schema equivalent.
func newLintProtoCmd() *cobra.Command {
	cc := &cobra.Command{
		Use:    "lint-proto FILE.proto",
		Short:  "describe an existing .proto file's messages and services",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cc *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := protobridge.Describe(f)
			if err != nil {
				return err
			}
			fmt.Fprint(cc.OutOrStdout(), report.String())
			return nil
		},
	}
	return cc
}
