package toon

import "fmt"

// An IndentationError is returned when a line's leading whitespace cannot be
// reconciled with the document's indentation unit or with any enclosing
// block: a tab in the indentation, a width that is not a multiple of the
// unit, or an indent where no nested block is expected.
type IndentationError struct {
	Msg  string
	Line int
}

func (e *IndentationError) Error() string {
	return fmt.Sprintf("toon: indentation error: %v (line %v)", e.Msg, e.Line)
}

// An ArrayLengthMismatchError is returned in strict mode when an array block
// contains a different number of elements than its header declared.
type ArrayLengthMismatchError struct {
	Key      string
	Expected int
	Actual   int
	Line     int
}

func (e *ArrayLengthMismatchError) Error() string {
	return fmt.Sprintf("toon: array length mismatch: expected %v, got %v (line %v)", e.Expected, e.Actual, e.Line)
}

// A RowShapeError is returned when a tabular row's field count differs from
// the field count declared by the array header.
type RowShapeError struct {
	Expected int
	Actual   int
	Line     int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("toon: row has %v fields, header declares %v (line %v)", e.Actual, e.Expected, e.Line)
}

// A DuplicateKeyError is returned when a key appears more than once within a
// single object block.
type DuplicateKeyError struct {
	Key  string
	Line int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("toon: duplicate key %q (line %v)", e.Key, e.Line)
}

// An UnterminatedQuoteError is returned when a quoted string is missing its
// closing quote.
type UnterminatedQuoteError struct {
	Line   int
	Column int
}

func (e *UnterminatedQuoteError) Error() string {
	return fmt.Sprintf("toon: unterminated quoted string (line %v, column %v)", e.Line, e.Column)
}

// An UnexpectedTokenError is returned when a line matches no grammar
// production in the current parser state.
type UnexpectedTokenError struct {
	Token string
	Line  int
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("toon: unexpected token %q (line %v)", e.Token, e.Line)
}

// An UnsupportedTypeError is returned by Encode when given a Value whose
// dynamic type is outside the closed set defined by this package. It is
// unreachable for trees built from this package's constructors but is
// defined for inputs crossing a process or package boundary.
type UnsupportedTypeError struct {
	TypeName string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("toon: unsupported value type %v", e.TypeName)
}
