// Package compat implements the CLI's `-c/--compat <file.json>` check:
// spec §6/§7's "Compatibility error" — compare a previously persisted JSON
// IR (spec §4.6) against the current compile's IR and fail if the wire
// format would no longer match a client built against the prior schema.
//
// There is no compat checker in the original compiler's own source (the
// original leaves this to out-of-band tooling); this package is grounded
// on converter.rs's JSON shape (the exact keys compared below) and on
// cuelang-cue's use of google/go-cmp in its own test suite for structural
// diffing, reused here as the library that drives the comparison.
package compat

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/whzard/punybuf/internal/ir"
)

// Mismatch describes one binary-incompatible difference between a prior
// persisted IR and the current one.
type Mismatch struct {
	Path   string
	Detail string
}

func (m Mismatch) String() string { return fmt.Sprintf("%s: %s", m.Path, m.Detail) }

// Check decodes priorJSON (bytes of a previously emitted `-o x.json` file)
// and compares it against def's own JSON IR, returning every change that
// would break a client built against the prior schema. A nil/empty result
// means priorJSON remains wire-compatible with def.
func Check(priorJSON []byte, def *ir.Definition) ([]Mismatch, error) {
	var prior map[string]interface{}
	if err := json.Unmarshal(priorJSON, &prior); err != nil {
		return nil, fmt.Errorf("compat: prior IR is not valid JSON: %w", err)
	}

	currentBytes, err := ir.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("compat: re-encoding current IR: %w", err)
	}
	var current map[string]interface{}
	if err := json.Unmarshal(currentBytes, &current); err != nil {
		return nil, fmt.Errorf("compat: re-decoding current IR: %w", err)
	}

	var out []Mismatch
	out = append(out, compareTypes(prior, current)...)
	out = append(out, compareCommands(prior, current)...)

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func asSlice(doc map[string]interface{}, key string) []interface{} {
	v, _ := doc[key].([]interface{})
	return v
}

// keyOf builds the "name.layer" index key converter.rs also uses to derive
// command ids, reused here purely as a stable map key.
func keyOf(obj map[string]interface{}) string {
	name, _ := obj["name"].(string)
	layer, _ := obj["layer"].(float64)
	return fmt.Sprintf("%s.%d", name, int(layer))
}

func indexObjs(items []interface{}) map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		out[keyOf(obj)] = obj
	}
	return out
}

func compareTypes(prior, current map[string]interface{}) []Mismatch {
	priorTypes := indexObjs(asSlice(prior, "types"))
	currentTypes := indexObjs(asSlice(current, "types"))

	var out []Mismatch
	for key, pt := range priorTypes {
		path := "types." + key
		ct, ok := currentTypes[key]
		if !ok {
			out = append(out, Mismatch{Path: path, Detail: "type removed or moved to a different layer"})
			continue
		}
		if pt["is"] != ct["is"] {
			out = append(out, Mismatch{Path: path, Detail: fmt.Sprintf("type kind changed: %v -> %v", pt["is"], ct["is"])})
			continue
		}
		switch pt["is"] {
		case "alias":
			if d := cmp.Diff(pt["alias"], ct["alias"]); d != "" {
				out = append(out, Mismatch{Path: path + ".alias", Detail: "alias target changed:\n" + d})
			}
		case "struct":
			out = append(out, compareFields(path, asSlice(pt, "fields"), asSlice(ct, "fields"))...)
		case "enum":
			out = append(out, compareVariants(path, asSlice(pt, "variants"), asSlice(ct, "variants"))...)
		}
	}
	return out
}

// compareFields checks each prior field still exists, at the same
// position, with the same value type; a field's position determines its
// place in struct wire order (spec §4.7), so positional drift is incompatible
// even when names still match.
func compareFields(path string, prior, current []interface{}) []Mismatch {
	var out []Mismatch
	for i, pf := range prior {
		pfo, _ := pf.(map[string]interface{})
		if i >= len(current) {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.fields[%d]", path, i), Detail: fmt.Sprintf("field %q removed", pfo["name"])})
			continue
		}
		cfo, _ := current[i].(map[string]interface{})
		if pfo["name"] != cfo["name"] {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.fields[%d]", path, i), Detail: fmt.Sprintf("field renamed or reordered: %q -> %q", pfo["name"], cfo["name"])})
			continue
		}
		if d := cmp.Diff(pfo["value"], cfo["value"]); d != "" {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.fields[%d].value", path, i), Detail: "field value type changed:\n" + d})
		}
		out = append(out, compareFlags(fmt.Sprintf("%s.fields[%d]", path, i), pfo["flags"], cfo["flags"])...)
	}
	return out
}

func compareFlags(path string, prior, current interface{}) []Mismatch {
	priorFlags, _ := prior.([]interface{})
	currentFlags, _ := current.([]interface{})
	var out []Mismatch
	for i, pf := range priorFlags {
		pfo, _ := pf.(map[string]interface{})
		if i >= len(currentFlags) {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.flags[%d]", path, i), Detail: fmt.Sprintf("flag %q removed", pfo["name"])})
			continue
		}
		cfo, _ := currentFlags[i].(map[string]interface{})
		if pfo["name"] != cfo["name"] {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.flags[%d]", path, i), Detail: fmt.Sprintf("flag renamed or reordered: %q -> %q", pfo["name"], cfo["name"])})
		}
	}
	return out
}

// compareVariants checks discriminant stability, not positional order:
// enum wire encoding keys off the discriminant byte (spec §4.7), so two
// variants may be reordered in the declaration without breaking the wire
// as long as each name keeps its discriminant.
func compareVariants(path string, prior, current []interface{}) []Mismatch {
	byDiscriminant := func(items []interface{}) map[float64]map[string]interface{} {
		out := make(map[float64]map[string]interface{}, len(items))
		for _, it := range items {
			obj, _ := it.(map[string]interface{})
			d, _ := obj["discriminant"].(float64)
			out[d] = obj
		}
		return out
	}
	priorByD := byDiscriminant(prior)
	currentByD := byDiscriminant(current)

	var out []Mismatch
	for d, pv := range priorByD {
		cv, ok := currentByD[d]
		if !ok {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.variants[%v]", path, d), Detail: fmt.Sprintf("discriminant %v (%q) removed", d, pv["name"])})
			continue
		}
		if pv["name"] != cv["name"] {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.variants[%v]", path, d), Detail: fmt.Sprintf("discriminant %v renamed: %q -> %q", d, pv["name"], cv["name"])})
		}
		if d := cmp.Diff(pv["value"], cv["value"]); d != "" {
			out = append(out, Mismatch{Path: fmt.Sprintf("%s.variants[%v].value", path, pv["discriminant"]), Detail: "variant value type changed:\n" + d})
		}
	}
	return out
}

func compareCommands(prior, current map[string]interface{}) []Mismatch {
	priorCmds := indexObjs(asSlice(prior, "commands"))
	currentCmds := indexObjs(asSlice(current, "commands"))

	var out []Mismatch
	for key, pc := range priorCmds {
		path := "commands." + key
		cc, ok := currentCmds[key]
		if !ok {
			out = append(out, Mismatch{Path: path, Detail: "command removed or moved to a different layer"})
			continue
		}
		if pc["id"] != cc["id"] {
			out = append(out, Mismatch{Path: path, Detail: fmt.Sprintf("command_id changed: %v -> %v", pc["id"], cc["id"])})
		}
		if d := cmp.Diff(pc["arg"], cc["arg"]); d != "" {
			out = append(out, Mismatch{Path: path + ".arg", Detail: "argument shape changed:\n" + d})
		}
		if d := cmp.Diff(pc["ret"], cc["ret"]); d != "" {
			out = append(out, Mismatch{Path: path + ".ret", Detail: "return type changed:\n" + d})
		}
		out = append(out, compareVariants(path+".err", asSlice(pc, "err"), asSlice(cc, "err"))...)
	}
	return out
}
