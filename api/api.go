// Package api carries the OpenAPI contract for the espalier HTTP server.
// The server serves it at /openapi.yaml and the contract tests validate the
// handlers against it.
package api

import _ "embed"

//go:embed openapi.yaml
var Spec []byte
