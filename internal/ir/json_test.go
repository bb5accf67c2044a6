package ir

import (
	"encoding/json"
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/token"
)

func sampleDefinition() *Definition {
	return &Definition{
		Types: []*TypeDef{
			{
				Name:  "S",
				Layer: 0,
				Kind:  KindStruct,
				Attrs: Attrs{},
				Fields: []*Field{
					{Name: "a", Value: NewRef("U32", token.NoSpan), Attrs: Attrs{}},
				},
			},
		},
		Commands: []*CommandDef{
			{
				Name:      "Ping",
				Layer:     0,
				CommandID: 42,
				Attrs:     Attrs{},
				Argument:  CommandArg{Kind: ArgNone},
				Ret:       NewRef("Done", token.NoSpan),
				Err:       []*EnumVariant{{Name: "UnexpectedError", Discriminant: 0, Value: NewRef("String", token.NoSpan), Attrs: Attrs{}}},
			},
		},
	}
}

// TestMarshalProducesRefTupleAndEmptyArgShape checks the handful of shape
// decisions spec §4.6 calls out explicitly: a Ref is a 3-tuple
// [name, layer|null, generics], and a no-argument command's "arg" is an
// empty object rather than omitted or null.
func TestMarshalProducesRefTupleAndEmptyArgShape(t *testing.T) {
	got, err := Marshal(sampleDefinition())
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(got, &doc))

	types := doc["types"].([]interface{})
	require.Len(t, types, 1)
	s := types[0].(map[string]interface{})
	fields := s["fields"].([]interface{})
	a := fields[0].(map[string]interface{})
	require.Equal(t, []interface{}{"U32", nil, []interface{}{}}, a["value"])

	commands := doc["commands"].([]interface{})
	require.Len(t, commands, 1)
	ping := commands[0].(map[string]interface{})
	require.Equal(t, float64(42), ping["id"])
	require.Equal(t, map[string]interface{}{}, ping["arg"])
	require.Equal(t, []interface{}{"Done", nil, []interface{}{}}, ping["ret"])
}

// TestMarshalIsDeterministic guards against map-iteration-order flakiness:
// encoding the same Definition twice must byte-for-byte agree, since
// --compat diffs two JSON IR documents and a nondeterministic emitter would
// manufacture phantom mismatches.
func TestMarshalIsDeterministic(t *testing.T) {
	def := sampleDefinition()
	a, err := MarshalIndent(def, "", "  ")
	require.NoError(t, err)
	b, err := MarshalIndent(def, "", "  ")
	require.NoError(t, err)

	if string(a) != string(b) {
		t.Errorf("two encodings of the same Definition diverged:\n%s", diff.Diff(string(a), string(b)))
	}
}
