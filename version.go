package espalier

import _ "embed"

// Version is the release version, sourced from the VERSION file. It carries
// a trailing newline; trim before display.
//
//go:embed VERSION
var Version string
