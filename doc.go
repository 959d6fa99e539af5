/*
Package espalier validates state machine definitions and turns them into strongly typed, immutable models.

A definition is a single YAML or JSON document describing states, the events and timers that move between them, and what observers may learn when an edge is traversed. Espalier is the front end of that pipeline: it parses the document, checks every cross-reference and structural rule in one shot, and either returns a complete model or the first violation anchored to its line and column. It never executes a machine.

# Concept

Validation is all-or-nothing. The compiler resolves every state, event and timer name (forward references are fine), enforces that each state commits to exactly one behavior (transition edges, an unconditional next state, or finality), and checks edge targets, timer adjustments and traversal notification shapes. The first broken rule aborts with a *document.Error; there is no partial model and no error list to merge. A model that comes back is safe to hand to code generators, diagram renderers or an executor without re-checking anything.

# Usage

Compile a definition directly from bytes or a file:

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/espalier"
	)

	func main() {
		model, err := espalier.Compile([]byte(`
	timers:
	  t_retry: 30
	states:
	  waiting:
	    on_timer:
	      t_retry: sending
	  sending:
	    final: true
	start_state: waiting
	`))
		if err != nil {
			log.Fatal(err) // e.g. "7:16: unknown state \"sennding\""
		}

		fmt.Println(model.StartState)
		for _, name := range model.StateNames() {
			fmt.Println(name)
		}
	}

The subpackages take the model further: internal/presentation renders Mermaid diagrams and terminal summaries, internal/codegen emits Go transition tables, internal/server exposes validation over HTTP, and pkg/dsl builds definitions programmatically.
*/
package espalier
