// Package schema embeds the builtin "common" schema and provides the
// filesystem-backed IncludeHandler the CLI wires into the scanner.
//
// Grounded on the original compiler's files.rs (the `COMMON` baked string
// constant and its `tokens_from_file`/include resolution) and spec §4.1's
// include-directive rules: "common" substitutes the builtin schema at most
// once, other paths resolve relative to the including file's directory,
// and a repeated/cyclic include is a warning (not an error) that yields an
// empty token splice.
package schema

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/scanner"
	"github.com/whzard/punybuf/internal/token"
)

//go:embed common.pbd
var commonSource string

const commonFileName = "<common>"

// Includer is a scanner.IncludeHandler rooted at the directory of the entry
// file. It is not safe for concurrent use; one Includer serves one compile.
type Includer struct {
	dir            string
	included       map[string]token.Span
	IncludesCommon bool
}

// NewIncluder returns an Includer that resolves relative include paths
// against entryDir (the directory containing the entry .pbd file).
func NewIncluder(entryDir string) *Includer {
	return &Includer{dir: entryDir, included: make(map[string]token.Span)}
}

var _ scanner.IncludeHandler = (*Includer)(nil)

// Resolve implements scanner.IncludeHandler.
func (inc *Includer) Resolve(path string, site token.Span) ([]token.Token, *errors.List) {
	if path == "common" {
		if _, seen := inc.included[commonFileName]; seen {
			return nil, nil
		}
		inc.included[commonFileName] = site
		inc.IncludesCommon = true
		file := &token.File{Name: commonFileName, Contents: commonSource}
		toks, errs := scanner.Scan(file, inc)
		return toks, errs
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(inc.dir, path)
	}
	abs = filepath.Clean(abs)

	if first, seen := inc.included[abs]; seen {
		var errs errors.List
		errs.Add(errors.WithSeverity(errors.WithPanels(
			errors.Newf(site, "include of %q was already processed; skipping repeated/cyclic include", path),
			errors.Panel{Content: "first included here", Span: first, Severity: errors.Warning},
		), errors.Warning))
		return nil, &errs
	}
	inc.included[abs] = site

	contents, err := os.ReadFile(abs)
	if err != nil {
		var errs errors.List
		errs.Add(errors.Wrapf(site, err, "cannot read included file %q", path))
		return nil, &errs
	}

	// Nested includes inside the included file resolve relative to ITS
	// directory; restore the caller's directory once it's done lexing.
	savedDir := inc.dir
	inc.dir = filepath.Dir(abs)
	defer func() { inc.dir = savedDir }()

	file := &token.File{Name: abs, Contents: string(contents)}
	return scanner.Scan(file, inc)
}
