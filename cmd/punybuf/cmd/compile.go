package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/whzard/punybuf/internal/codegen"
	"github.com/whzard/punybuf/internal/compat"
	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/flatten"
	"github.com/whzard/punybuf/internal/ir"
	"github.com/whzard/punybuf/internal/parser"
	"github.com/whzard/punybuf/internal/resolve"
	"github.com/whzard/punybuf/internal/token"
	"github.com/whzard/punybuf/internal/validate"
	"github.com/whzard/punybuf/schema"
)

func newRootCmd() *Command {
	cc := &cobra.Command{
		Use:   "punybuf INPUT",
		Short: "punybuf compiles .pbd schema files into a JSON IR and generated code",
		Long: `punybuf reads a schema written in the punybuf definition language
(.pbd), validates it, resolves references across revision layers, and
emits a JSON intermediate representation plus, optionally, generated
client/server source for a registered target language.

See 'punybuf help' for the full flag surface.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c := &Command{Command: cc}

	flags := addCompileFlags(cc.Flags())
	cc.RunE = mkRunE(c, func(c *Command, args []string) error {
		return runCompile(c, args[0], flags)
	})

	cc.AddCommand(newLintProtoCmd())
	return c
}

func runCompile(c *Command, input string, flags *compileFlags) error {
	def, errs := compileFile(input, resolve.Options{NoResolve: flags.noResolve}, flags.verbose, c.Stderr())
	if errs.HasFatal() {
		printErrorList(c.Stderr(), errs)
		return ErrPrintedError
	}
	if errs.Len() > 0 {
		printErrorList(c.Stderr(), errs)
	}

	if flags.compat != "" {
		prior, err := os.ReadFile(flags.compat)
		if err != nil {
			fmt.Fprintf(c.Stderr(), "compat: cannot read %s: %v\n", flags.compat, err)
			return ErrPrintedError
		}
		mismatches, err := compat.Check(prior, def)
		if err != nil {
			fmt.Fprintln(c.Stderr(), err)
			return ErrPrintedError
		}
		if len(mismatches) > 0 {
			fmt.Fprintf(c.Stderr(), "compat: %d binary-incompatible change(s) vs %s:\n", len(mismatches), flags.compat)
			for _, m := range mismatches {
				fmt.Fprintf(c.Stderr(), "  %s\n", m)
			}
			return ErrPrintedError
		}
	}

	jsonOut, err := ir.MarshalIndent(def, "", "  ")
	if err != nil {
		fmt.Fprintln(c.Stderr(), err)
		return ErrPrintedError
	}

	if !flags.dryRun {
		for _, outPath := range flags.out {
			if err := writeOutput(def, jsonOut, outPath); err != nil {
				fmt.Fprintf(c.Stderr(), "codegen: %v\n", err)
				return ErrPrintedError
			}
		}
	}

	if flags.wantsStdout() {
		fmt.Fprintln(c.OutOrStdout(), string(jsonOut))
	}
	return nil
}

// compileFile runs the full pipeline (spec §2's six stages minus codegen)
// over the entry file at path, returning whatever errors accumulated along
// the way even when the Definition is unusable, so the CLI can decide
// whether HasFatal() blocks emission.
func compileFile(path string, opt resolve.Options, verbose bool, stderr io.Writer) (*ir.Definition, *errors.List) {
	if _, err := os.Stat(path); err != nil {
		var errs errors.List
		errs.Add(errors.Wrapf(token.NoSpan, xerrors.Errorf("reading schema: %w", err), "cannot read %s", path))
		return nil, &errs
	}

	if verbose {
		log.SetOutput(stderr)
		log.SetFlags(0)
	}

	// The entry file is lexed through the includer so that it is recorded as
	// already included: a cyclic include back to it is skipped with a warning.
	includer := schema.NewIncluder(filepath.Dir(path))
	toks, lexErrs := includer.Resolve(filepath.Base(path), token.NoSpan)
	if verbose {
		log.Printf("verbose: lexed %s into %d top-level tokens", path, len(toks))
	}

	decls, parseErrs := parser.Parse(toks)
	all := errors.Append(lexErrs, parseErrs)

	def, flattenErrs := flatten.Flatten(decls, includer.IncludesCommon)
	all = errors.Append(all, flattenErrs)
	if def == nil {
		return nil, all
	}

	validateErrs := validate.Validate(def)
	all = errors.Append(all, validateErrs)

	resolveErrs := resolve.Resolve(def, opt)
	all = errors.Append(all, resolveErrs)

	if verbose {
		log.Printf("verbose: %d types, %d commands after resolution", len(def.Types), len(def.Commands))
	}

	return def, all
}

func writeOutput(def *ir.Definition, jsonBytes []byte, outPath string) error {
	ext := strings.TrimPrefix(filepath.Ext(outPath), ".")
	if ext == "json" || ext == "" {
		return os.WriteFile(outPath, jsonBytes, 0o644)
	}
	if ext == "yaml" || ext == "yml" {
		// Re-encode the same JSON IR doc (rather than def itself) so the
		// yaml output matches converter.rs's field shapes exactly instead
		// of drifting from whatever yaml.v3 infers from Go field names.
		var doc interface{}
		if err := json.Unmarshal(jsonBytes, &doc); err != nil {
			return xerrors.Errorf("decoding json IR for yaml re-encoding: %w", err)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return xerrors.Errorf("marshaling %s as yaml: %w", outPath, err)
		}
		return os.WriteFile(outPath, out, 0o644)
	}
	gen, ok := codegen.Lookup(ext)
	if !ok {
		return fmt.Errorf("no generator registered for %q output (from %s)", ext, outPath)
	}
	out, err := gen.Generate(def)
	if err != nil {
		return fmt.Errorf("%s: %w", gen.Name(), err)
	}
	return os.WriteFile(outPath, out, 0o644)
}
