/*
Package dsl provides a fluent Go API for constructing machine definitions programmatically.

It builds the same document tree the YAML/JSON front end produces and runs it through the same validator, so every rule that holds for a definition file holds for a built definition. This is useful for dynamic machine generation, unit testing, and leveraging IDE autocompletion instead of editing documents by hand.

Example usage:

	package main

	import (
		"log"

		"github.com/aretw0/espalier/pkg/dsl"
		"github.com/aretw0/espalier/pkg/machine"
	)

	func main() {
		b := dsl.New()

		b.Timer("t_retry", 30)
		b.Event("confirm").Arg("user", "string")

		b.State("waiting").
			StartTimer("t_retry").
			OnTimer("t_retry").To("waiting")
		b.State("waiting").
			OnEvent("confirm").
			Choice("yes", machine.ToState("done")).
			Choice("no", machine.NoChange()).
			Notify(machine.TraverseTriggerOnly)
		b.State("done").Final()

		b.Start("waiting")

		model, err := b.Build()
		if err != nil {
			log.Fatal(err)
		}
		_ = model
	}

Because built definitions carry no source positions, violations are reported as bare messages without line and column anchors.
*/
package dsl
