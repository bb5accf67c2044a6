// Package protobridge is a read-only, descriptive bridge from existing
// .proto files to a human-readable report: it never produces a Punybuf
// schema or any other generated artifact, it only describes what a .proto
// file declares, for the CLI's `lint-proto` helper command (SPEC_FULL.md
// supplemented feature: teams migrating off protobuf want to see their
// message/service shapes summarized before hand-authoring the .pbd
// equivalent). Grounded on github.com/emicklei/proto, the parser
// cuelang-cue's own go.mod already depends on for its protobuf encoding
// support.
package protobridge

import (
	"fmt"
	"io"
	"strings"

	"github.com/emicklei/proto"
)

// MessageInfo summarizes one `message` declaration.
type MessageInfo struct {
	Name       string
	FieldCount int
}

// ServiceInfo summarizes one `service` declaration.
type ServiceInfo struct {
	Name string
	RPCs []string
}

// Report is the result of describing one .proto file.
type Report struct {
	Package  string
	Messages []MessageInfo
	Services []ServiceInfo
}

// Describe parses r as a .proto file and summarizes its package, messages,
// and services. It never writes anything back; callers that want an
// actual Punybuf schema still hand-author one, using the report as a
// checklist.
func Describe(r io.Reader) (*Report, error) {
	def, err := proto.NewParser(r).Parse()
	if err != nil {
		return nil, fmt.Errorf("protobridge: parsing .proto: %w", err)
	}

	rep := &Report{}
	proto.Walk(def,
		proto.WithPackage(func(p *proto.Package) {
			rep.Package = p.Name
		}),
		proto.WithMessage(func(m *proto.Message) {
			rep.Messages = append(rep.Messages, MessageInfo{
				Name:       m.Name,
				FieldCount: len(m.Elements),
			})
		}),
		proto.WithService(func(s *proto.Service) {
			svc := ServiceInfo{Name: s.Name}
			for _, e := range s.Elements {
				if rpc, ok := e.(*proto.RPC); ok {
					svc.RPCs = append(svc.RPCs, rpc.Name)
				}
			}
			rep.Services = append(rep.Services, svc)
		}),
	)
	return rep, nil
}

// String renders the report as indented plain text, suitable for
// `punybuf lint-proto` to print directly to stdout.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n", r.Package)
	for _, m := range r.Messages {
		fmt.Fprintf(&b, "  message %s (%d fields)\n", m.Name, m.FieldCount)
	}
	for _, s := range r.Services {
		fmt.Fprintf(&b, "  service %s (%d rpcs: %s)\n", s.Name, len(s.RPCs), strings.Join(s.RPCs, ", "))
	}
	return b.String()
}
