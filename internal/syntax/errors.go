package syntax

import "fmt"

// ParseError is a recoverable error produced while building the tree. The
// tree is always complete even when ParseErrors were produced; Start/End and
// Line/Col point at the token that triggered the error.
type ParseError struct {
	Message string
	Start   int
	End     int
	Line    int
	Col     int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("around line %d, char %d: %s", e.Line, e.Col, e.Message)
}

// ErrBoundedNesting is the message used when the parser's recursion-depth
// counter trips. The wording matches §4.1 verbatim so tooling can
// match on it.
const ErrBoundedNesting = "expression nesting exceeds parser limit"

// MaxExpressionDepth is the recursion-depth limit on expression forms
// (unary, binary, parenthesized, call, member). Crossing it produces
// ErrBoundedNesting rather than a stack overflow.
const MaxExpressionDepth = 1500

// synchronizing tokens used for statement-level error recovery: on a parse
// error inside a statement, the parser skips forward to the next one of
// these so that subsequent code still parses.
var syncKinds = map[Kind]bool{
	KindSemicolon:          true,
	KindKwEndIf:            true,
	KindKwEndFor:           true,
	KindKwEndWhile:         true,
	KindKwEndRepeat:        true,
	KindKwEndCase:          true,
	KindKwEndProgram:       true,
	KindKwEndFunction:      true,
	KindKwEndFunctionBlock: true,
	KindKwEndMethod:        true,
	KindEOF:                true,
}
