package compiler

import "github.com/aretw0/espalier/pkg/document"

// registry is one uniqueness-enforcing namespace of declared names. The
// three instances (states, events, timers) are filled while their sections
// parse and only read afterwards.
type registry struct {
	kind  string
	names map[string]struct{}
}

func newRegistry(kind string) *registry {
	return &registry{kind: kind, names: make(map[string]struct{})}
}

// add registers a name. The document layer already rejects repeated keys, so
// a duplicate here is a defect in this package, not in the document.
func (r *registry) add(name string) {
	if _, dup := r.names[name]; dup {
		internalf("duplicate %s %q in registry", r.kind, name)
	}
	r.names[name] = struct{}{}
}

func (r *registry) has(name string) bool {
	_, ok := r.names[name]
	return ok
}

// require fails with a positioned diagnostic citing the name when it is not
// registered.
func (r *registry) require(name string, pos document.Position) error {
	if !r.has(name) {
		return document.Errorf(pos, "unknown %s %q", r.kind, name)
	}
	return nil
}
