package cmd

import "github.com/spf13/pflag"

// compileFlags mirrors spec §6's CLI surface table exactly.
type compileFlags struct {
	quiet     bool
	loud      bool
	out       []string
	compat    string
	dryRun    bool
	noResolve bool
	verbose   bool
}

func addCompileFlags(fs *pflag.FlagSet) *compileFlags {
	f := &compileFlags{}
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress JSON on stdout")
	fs.BoolVarP(&f.loud, "loud", "l", false, "force JSON on stdout; overrides -q and implicit-quiet from -o")
	fs.StringArrayVarP(&f.out, "out", "o", nil, "generate into file; extension decides format (repeatable)")
	fs.StringVarP(&f.compat, "compat", "c", "", "compare against a prior JSON IR, fail if binary-incompatible")
	fs.BoolVarP(&f.dryRun, "dry-run", "d", false, "run all passes but write no files")
	fs.BoolVar(&f.noResolve, "no-resolve", false, "skip @resolve alias de-aliasing")
	fs.BoolVar(&f.verbose, "verbose", false, "debug logging to stderr")
	return f
}

// wantsStdout implements spec §6's quiet/loud/out interaction: -o implies
// quiet unless -l overrides it; -l always wins over -q.
func (f *compileFlags) wantsStdout() bool {
	if f.loud {
		return true
	}
	if f.quiet {
		return false
	}
	if len(f.out) > 0 {
		return false
	}
	return true
}
