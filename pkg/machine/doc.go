// Package machine defines the validated state machine model.
//
// A StateMachine is the output of a successful compilation pass: every name
// reference has been resolved, every structural rule checked. The model is
// built once and never mutated afterwards, so it is safe to share across
// goroutines and to feed to any number of downstream consumers (code
// generators, diagram renderers, serving APIs).
//
// States, events and timers live in three independent namespaces and are
// connected by name, not by pointer. Cross-references are guaranteed
// resolvable, so lookups after a successful compile cannot miss.
package machine
