// Package document provides the position-aware value tree that machine
// definitions are read from.
//
// A definition file is parsed into a tree of tagged nodes (null, bool, int,
// float, string, array, object). Every node remembers the line and column it
// came from, so later validation stages can point at the exact token that
// broke a rule. Object nodes keep their entries in file order and reject
// repeated keys at parse time.
//
// The tree is format-agnostic from the caller's point of view: input is YAML,
// and since YAML is a superset of JSON, plain JSON documents parse unchanged.
//
// Basic usage:
//
//	root, err := document.Parse(data)
//	if err != nil {
//	    // err is a *document.Error carrying the source position
//	}
//	states, ok := root.Get("states")
package document
