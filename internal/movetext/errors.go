package movetext

import (
	"errors"
	"fmt"
)

// ErrStructural matches every error caused by malformed movetext structure.
var ErrStructural = errors.New("malformed movetext")

// UnbalancedParenthesesError reports a variation that is never closed, or a
// closing parenthesis with no variation open.
type UnbalancedParenthesesError struct {
	Offset  int  // byte offset of the offending parenthesis
	Opening bool // true for an unmatched "("
}

func (e *UnbalancedParenthesesError) Error() string {
	if e.Opening {
		return fmt.Sprintf("no matching closing parenthesis for variation at offset %d", e.Offset)
	}
	return fmt.Sprintf("no matching opening parenthesis at offset %d", e.Offset)
}

func (e *UnbalancedParenthesesError) Is(target error) bool {
	return target == ErrStructural
}

// UnterminatedCommentError reports a brace comment that never closes, or a
// stray closing brace.
type UnterminatedCommentError struct {
	Offset  int
	Closing bool
}

func (e *UnterminatedCommentError) Error() string {
	if e.Closing {
		return fmt.Sprintf("unexpected closing brace at offset %d", e.Offset)
	}
	return fmt.Sprintf("unterminated comment at offset %d", e.Offset)
}

func (e *UnterminatedCommentError) Is(target error) bool {
	return target == ErrStructural
}

// InvalidTokenError reports a word that is neither a move, a move number nor
// a result, such as a bare number.
type InvalidTokenError struct {
	Offset int
	Text   string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("unexpected %q at offset %d", e.Text, e.Offset)
}

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrStructural
}
