// Package codegen defines the contract a target-language code generator
// must satisfy: input IR to output text (spec §1: "A target-language code
// generator is specified only by its contract ... one specific back-end's
// emitted source text" is explicitly out of scope here). No concrete
// backend lives in this module; -o/--out with an unregistered extension is
// a Codegen error (spec §7), and -o/--out with ".json" (or no extension)
// bypasses Generator entirely and writes the ir.MarshalIndent output, since
// the JSON IR is the one emitter spec §4.6 actually specifies; ".yaml" and
// ".yml" also bypass Generator and re-encode that JSON IR as YAML.
//
// Grounded on the original compiler's rust_codegen.rs only at the
// boundary: its RustCodegen walks a PunybufDefinition and appends to a
// string buffer one declaration at a time. Generator mirrors that shape
// (Definition in, []byte out) without reproducing any one backend's
// text, matching the "contract only" scope.
package codegen

import "github.com/whzard/punybuf/internal/ir"

// Generator turns a resolved ir.Definition into target-language source.
// Registered generators are looked up by the file extension passed to
// -o/--out (e.g. "rs" for Rust, "ts" for TypeScript).
type Generator interface {
	// Name identifies the backend for diagnostics (e.g. "rust").
	Name() string
	// Generate renders def as target-language source text.
	Generate(def *ir.Definition) ([]byte, error)
}

var registry = map[string]Generator{}

// Register adds g under ext (without the leading dot, e.g. "rs"). A
// second Register call for the same extension replaces the first,
// mirroring how database/sql drivers register themselves — last caller
// wins rather than panicking, since a host program may want to override
// a default backend.
func Register(ext string, g Generator) {
	registry[ext] = g
}

// Lookup returns the Generator registered for ext, if any.
func Lookup(ext string) (Generator, bool) {
	g, ok := registry[ext]
	return g, ok
}
