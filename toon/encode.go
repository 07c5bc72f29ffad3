package toon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// EncodeOptions configures an Encoder.
type EncodeOptions struct {
	// Delimiter separates inline array items and tabular row fields.
	// Defaults to Comma.
	Delimiter Delimiter

	// Indent is the number of spaces per nesting level. Defaults to 2.
	Indent int

	// KeyFolding collapses chains of single-entry objects into dotted keys
	// when set to FoldSafe. Defaults to FoldOff.
	KeyFolding FoldMode
}

// DefaultEncodeOptions returns the default encoder configuration.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Delimiter: Comma, Indent: 2}
}

// Encode renders a Value tree as TOON text using the default options.
func Encode(v Value) (string, error) {
	return NewEncoder(DefaultEncodeOptions()).Encode(v)
}

// An Encoder renders Value trees as TOON text. It holds no per-call state
// and is safe for concurrent use.
type Encoder struct {
	opts EncodeOptions
}

// NewEncoder creates an Encoder. Zero-valued options are replaced with
// their defaults.
func NewEncoder(opts EncodeOptions) *Encoder {
	if opts.Delimiter == 0 {
		opts.Delimiter = Comma
	}
	if opts.Indent == 0 {
		opts.Indent = 2
	}
	return &Encoder{opts: opts}
}

// Encode renders a Value tree as TOON text. The output has no trailing
// newline. Encoding is deterministic: equal inputs and options produce
// byte-identical output.
func (enc *Encoder) Encode(v Value) (string, error) {
	if !enc.opts.Delimiter.valid() {
		return "", errors.Errorf("toon: invalid delimiter %q", byte(enc.opts.Delimiter))
	}
	if enc.opts.Indent < 1 {
		return "", errors.Errorf("toon: invalid indent %d", enc.opts.Indent)
	}

	e := &encoder{opts: enc.opts}
	if err := e.encodeRoot(v); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

type encoder struct {
	sb   strings.Builder
	opts EncodeOptions
}

// beginLine starts a new output line at the given nesting level.
func (e *encoder) beginLine(level int) {
	if e.sb.Len() > 0 {
		e.sb.WriteByte('\n')
	}
	for i := 0; i < level*e.opts.Indent; i++ {
		e.sb.WriteByte(' ')
	}
}

func (e *encoder) encodeRoot(v Value) error {
	switch val := v.(type) {
	case Null, Bool, Int, Float, String:
		s, err := e.scalar(val)
		if err != nil {
			return err
		}
		e.beginLine(0)
		e.sb.WriteString(s)
		return nil

	case Object:
		if val.Len() == 0 {
			e.beginLine(0)
			e.sb.WriteString("{}")
			return nil
		}
		return e.encodeObject(val, 0)

	case List:
		e.beginLine(0)
		return e.encodeArray("", false, val, 0)
	}

	return &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
}

// encodeObject writes one line per field at the given level.
func (e *encoder) encodeObject(o Object, level int) error {
	for _, f := range o.Fields() {
		key, v := f.Name, f.Value
		if e.opts.KeyFolding == FoldSafe {
			key, v = foldChain(key, v)
		}
		if err := e.encodeField(key, v, level, false); err != nil {
			return err
		}
	}
	return nil
}

// encodeField writes a single object entry. When cont is true the current
// line has already been begun (by a list element's dash) and the field's
// nested content, if any, still goes one level deeper than the line.
func (e *encoder) encodeField(key string, v Value, level int, cont bool) error {
	if !cont {
		e.beginLine(level)
	}

	switch val := v.(type) {
	case Null, Bool, Int, Float, String:
		s, err := e.scalar(val)
		if err != nil {
			return err
		}
		e.sb.WriteString(encodeKey(key))
		e.sb.WriteString(": ")
		e.sb.WriteString(s)
		return nil

	case Object:
		e.sb.WriteString(encodeKey(key))
		if val.Len() == 0 {
			e.sb.WriteString(": {}")
			return nil
		}
		e.sb.WriteString(":")
		return e.encodeObject(val, level+1)

	case List:
		return e.encodeArray(key, true, val, level)
	}

	return &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
}

// encodeArray writes a sequence in one of its three layouts: inline for
// all-scalar elements, tabular for uniform objects with scalar fields, and
// a dash list for everything else. The current line has already been begun.
// hasKey is false for a root-level or dash-nested array; an empty key with
// hasKey set is a genuine (quoted) empty key.
func (e *encoder) encodeArray(key string, hasKey bool, l List, level int) error {
	if l.Len() == 0 {
		e.writeInlinePrefix(key, hasKey)
		e.sb.WriteString("[]")
		return nil
	}

	if allScalars(l) {
		return e.encodeInlineArray(key, hasKey, l)
	}

	if headers, ok := tabularHeaders(l); ok {
		return e.encodeTabularArray(key, hasKey, l, headers, level)
	}

	if hasKey {
		e.sb.WriteString(encodeKey(key))
	}
	e.sb.WriteString("[")
	e.sb.WriteString(strconv.Itoa(l.Len()))
	e.sb.WriteString("]:")
	for _, elem := range l.Values() {
		if err := e.encodeListElement(elem, level+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeInlinePrefix(key string, hasKey bool) {
	if hasKey {
		e.sb.WriteString(encodeKey(key))
		e.sb.WriteString(": ")
	}
}

func (e *encoder) encodeInlineArray(key string, hasKey bool, l List) error {
	e.writeInlinePrefix(key, hasKey)
	e.sb.WriteByte('[')
	for i, elem := range l.Values() {
		if i > 0 {
			e.sb.WriteByte(byte(e.opts.Delimiter))
		}
		s, err := e.scalar(elem)
		if err != nil {
			return err
		}
		e.sb.WriteString(s)
	}
	e.sb.WriteByte(']')
	return nil
}

// encodeTabularArray writes the array's single header line followed by one
// delimiter-joined row per element. Non-comma delimiters are recorded as an
// indicator character after the count so the decoder can recover them.
func (e *encoder) encodeTabularArray(key string, hasKey bool, l List, headers []string, level int) error {
	if hasKey {
		e.sb.WriteString(encodeKey(key))
	}
	e.sb.WriteByte('[')
	e.sb.WriteString(strconv.Itoa(l.Len()))
	if e.opts.Delimiter != Comma {
		e.sb.WriteByte(byte(e.opts.Delimiter))
	}
	e.sb.WriteString("]{")
	for i, h := range headers {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		e.sb.WriteString(encodeKey(h))
	}
	e.sb.WriteString("}:")

	for _, elem := range l.Values() {
		obj := elem.(Object)
		e.beginLine(level + 1)
		for i, f := range obj.Fields() {
			if i > 0 {
				e.sb.WriteByte(byte(e.opts.Delimiter))
			}
			s, err := e.scalar(f.Value)
			if err != nil {
				return err
			}
			e.sb.WriteString(s)
		}
	}
	return nil
}

// encodeListElement writes one dash-marked element of a non-tabular array.
func (e *encoder) encodeListElement(v Value, level int) error {
	e.beginLine(level)

	switch val := v.(type) {
	case Null, Bool, Int, Float, String:
		s, err := e.scalar(val)
		if err != nil {
			return err
		}
		e.sb.WriteString("- ")
		e.sb.WriteString(s)
		return nil

	case List:
		e.sb.WriteString("- ")
		return e.encodeArray("", false, val, level)

	case Object:
		if val.Len() == 0 {
			e.sb.WriteString("- {}")
			return nil
		}
		fields := val.Fields()
		if isScalar(fields[0].Value) {
			// First entry rides on the dash line; the rest continue one
			// level deeper.
			e.sb.WriteString("- ")
			if err := e.encodeField(fields[0].Name, fields[0].Value, level, true); err != nil {
				return err
			}
			for _, f := range fields[1:] {
				if err := e.encodeField(f.Name, f.Value, level+1, false); err != nil {
					return err
				}
			}
			return nil
		}
		// A non-scalar first entry would make its nested block ambiguous
		// with the element's remaining entries, so the dash stands alone.
		e.sb.WriteString("-")
		for _, f := range fields {
			if err := e.encodeField(f.Name, f.Value, level+1, false); err != nil {
				return err
			}
		}
		return nil
	}

	return &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
}

func (e *encoder) scalar(v Value) (string, error) {
	switch val := v.(type) {
	case Null:
		return "null", nil
	case Bool:
		if val.Value() {
			return "true", nil
		}
		return "false", nil
	case Int:
		return strconv.FormatInt(val.Value(), 10), nil
	case Float:
		return formatFloat(val.Value()), nil
	case String:
		return encodeString(val.Value()), nil
	}
	return "", &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
}

func allScalars(l List) bool {
	for _, v := range l.Values() {
		if !isScalar(v) {
			return false
		}
	}
	return true
}

// tabularHeaders reports whether the list is tabular-eligible: non-empty,
// every element an Object with the identical ordered key list, and every
// field value a scalar. It returns the shared key list.
func tabularHeaders(l List) ([]string, bool) {
	first, ok := l.Index(0).(Object)
	if !ok || first.Len() == 0 {
		return nil, false
	}
	headers := first.Keys()

	for _, elem := range l.Values() {
		obj, ok := elem.(Object)
		if !ok || obj.Len() != len(headers) {
			return nil, false
		}
		for i, f := range obj.Fields() {
			if f.Name != headers[i] || !isScalar(f.Value) {
				return nil, false
			}
		}
	}
	return headers, true
}
