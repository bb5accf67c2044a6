package ir

import "encoding/json"

// Marshal renders a Definition as the stable JSON IR described in spec §4.6,
// field for field grounded on the original compiler's converter.rs: a Ref is
// emitted as the 3-tuple [name, layer|null, generics], attrs are emitted as
// an object with an explicit JSON null for a valueless attribute, and a
// no-argument command's "arg" key is an empty object rather than omitted.
func Marshal(d *Definition) ([]byte, error) {
	return json.Marshal(convertDefinition(d))
}

func MarshalIndent(d *Definition, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(convertDefinition(d), prefix, indent)
}

type jsonDoc struct {
	IncludesCommon bool          `json:"includes_common"`
	Types          []interface{} `json:"types"`
	Commands       []interface{} `json:"commands"`
}

func convertDefinition(d *Definition) jsonDoc {
	doc := jsonDoc{IncludesCommon: d.IncludesCommon}
	for _, t := range d.Types {
		doc.Types = append(doc.Types, convertType(t))
	}
	for _, c := range d.Commands {
		doc.Commands = append(doc.Commands, convertCommand(c))
	}
	if doc.Types == nil {
		doc.Types = []interface{}{}
	}
	if doc.Commands == nil {
		doc.Commands = []interface{}{}
	}
	return doc
}

func convertAttrs(a Attrs) map[string]interface{} {
	obj := map[string]interface{}{}
	for k, v := range a {
		if v == nil {
			obj[k] = nil
		} else {
			obj[k] = *v
		}
	}
	return obj
}

// refTuple is [name, layer|null, generics] — json.Marshal on a slice of
// heterogeneous interface{} produces the tuple array form spec §4.6 calls
// for.
func convertRef(r *TypeRef) []interface{} {
	if r == nil {
		return nil
	}
	gens := make([]interface{}, 0, len(r.Generics))
	for _, g := range r.Generics {
		gens = append(gens, convertRef(g))
	}
	var layer interface{}
	if r.ResolvedLayer != nil {
		layer = *r.ResolvedLayer
	}
	return []interface{}{r.Name, layer, gens}
}

func convertFlag(f *Flag) map[string]interface{} {
	obj := map[string]interface{}{
		"name":  f.Name,
		"attrs": convertAttrs(f.Attrs),
		"doc":   f.Doc,
	}
	if f.Value != nil {
		obj["value"] = convertRef(f.Value)
	} else {
		obj["value"] = nil
	}
	return obj
}

func convertFields(fields []*Field) []interface{} {
	out := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		obj := map[string]interface{}{
			"name":  f.Name,
			"attrs": convertAttrs(f.Attrs),
			"doc":   f.Doc,
			"value": convertRef(f.Value),
		}
		if f.Flags != nil {
			flags := make([]interface{}, 0, len(f.Flags))
			for _, fl := range f.Flags {
				flags = append(flags, convertFlag(fl))
			}
			obj["flags"] = flags
		} else {
			obj["flags"] = nil
		}
		out = append(out, obj)
	}
	return out
}

func convertVariants(variants []*EnumVariant) []interface{} {
	out := make([]interface{}, 0, len(variants))
	for _, v := range variants {
		obj := map[string]interface{}{
			"name":         v.Name,
			"discriminant": v.Discriminant,
			"attrs":        convertAttrs(v.Attrs),
			"doc":          v.Doc,
		}
		if v.Value != nil {
			obj["value"] = convertRef(v.Value)
		} else {
			obj["value"] = nil
		}
		out = append(out, obj)
	}
	return out
}

func convertType(t *TypeDef) map[string]interface{} {
	obj := map[string]interface{}{
		"name":         t.Name,
		"layer":        t.Layer,
		"generic_args": t.GenericArgs,
		"attrs":        convertAttrs(t.Attrs),
		"doc":          t.Doc,
	}
	if t.GenericArgs == nil {
		obj["generic_args"] = []string{}
	}
	if t.InlineOwner != nil {
		obj["inline_owner"] = *t.InlineOwner
	} else {
		obj["inline_owner"] = nil
	}

	switch t.Kind {
	case KindAlias:
		obj["is"] = "alias"
		obj["alias"] = convertRef(t.Alias)
	case KindStruct:
		obj["is"] = "struct"
		obj["fields"] = convertFields(t.Fields)
	case KindEnum:
		obj["is"] = "enum"
		obj["variants"] = convertVariants(t.Variants)
	}
	return obj
}

func convertCommand(c *CommandDef) map[string]interface{} {
	arg := map[string]interface{}{}
	switch c.Argument.Kind {
	case ArgRef:
		arg["is"] = "ref"
		arg["ref"] = convertRef(c.Argument.Ref)
	case ArgStruct:
		arg["is"] = "struct"
		arg["fields"] = convertFields(c.Argument.Fields)
	}

	return map[string]interface{}{
		"name":  c.Name,
		"layer": c.Layer,
		"id":    c.CommandID,
		"attrs": convertAttrs(c.Attrs),
		"doc":   c.Doc,
		"arg":   arg,
		"ret":   convertRef(c.Ret),
		"err":   convertVariants(c.Err),
	}
}
