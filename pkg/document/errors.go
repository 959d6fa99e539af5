package document

import "fmt"

// Error is a user-facing document failure: a malformed file, a schema
// violation, or a broken semantic rule. Pos anchors the message to the token
// that caused it.
type Error struct {
	Pos Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Errorf builds a positioned Error with fmt-style formatting.
func Errorf(pos Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
