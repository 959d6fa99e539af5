package compiler

import (
	"math"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// parseTimers reads the timers section: each entry maps a timer name to its
// default timeout in seconds, a bare non-negative number.
func (c *compilation) parseTimers(node *document.Node) error {
	for _, e := range node.Entries {
		value := e.Value
		if !value.IsNumber() {
			return document.Errorf(value.Pos, "timer %q must be a number, got %s", e.Key, value.Kind)
		}
		timeout := value.Number()
		if math.IsNaN(timeout) || math.IsInf(timeout, 0) {
			return document.Errorf(value.Pos, "timer %q timeout must be finite", e.Key)
		}
		if timeout < 0 {
			return document.Errorf(value.Pos, "timer %q timeout must be non-negative", e.Key)
		}
		c.timers.add(e.Key)
		c.addTimer(&machine.Timer{Name: e.Key, Timeout: timeout})
	}
	return nil
}
