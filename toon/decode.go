package toon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DecodeOptions configures a Decoder.
type DecodeOptions struct {
	// Indent is the number of spaces per nesting level. When zero, the unit
	// is auto-detected from the first indented line of the document.
	Indent int

	// Strict enforces declared array counts: a block with a different
	// number of elements than its header declares fails with an
	// ArrayLengthMismatchError. When false, fewer elements than declared
	// are tolerated. Strict is the default (see DefaultDecodeOptions).
	Strict bool

	// ExpandPaths expands dotted keys into nested objects when set to
	// ExpandSafe. Defaults to ExpandOff.
	ExpandPaths ExpandMode
}

// DefaultDecodeOptions returns the default decoder configuration:
// auto-detected indentation, strict array counts, no path expansion.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{Strict: true}
}

// Decode parses TOON text into a Value tree using the default options.
func Decode(text string) (Value, error) {
	return NewDecoder(DefaultDecodeOptions()).Decode(text)
}

// A Decoder parses TOON text into Value trees. It holds no per-call state
// and is safe for concurrent use.
type Decoder struct {
	opts DecodeOptions
}

// NewDecoder creates a Decoder.
func NewDecoder(opts DecodeOptions) *Decoder {
	return &Decoder{opts: opts}
}

// Decode parses TOON text into a Value tree. It never returns a partial
// result: on any grammar violation the Value is nil and the error carries
// the offending line number. An empty (or all-blank) document decodes to
// Null.
func (d *Decoder) Decode(text string) (Value, error) {
	if d.opts.Indent < 0 {
		return nil, errors.Errorf("toon: invalid indent %d", d.opts.Indent)
	}

	p := &parser{opts: d.opts}
	if err := p.scan(text); err != nil {
		return nil, err
	}
	if len(p.lines) == 0 {
		return Null{}, nil
	}

	v, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		return nil, &UnexpectedTokenError{Token: ln.text, Line: ln.num}
	}
	return v, nil
}

// A line is one non-blank input line with its indentation resolved to a
// nesting level.
type line struct {
	num    int // 1-based
	indent int // leading spaces
	level  int // indent / unit
	text   string
}

type parser struct {
	opts  DecodeOptions
	lines []line
	pos   int
	unit  int
}

// scan splits the input into indentation-measured lines, dropping blank
// lines, and resolves each line's nesting level. Blank lines never affect
// structure.
func (p *parser) scan(text string) error {
	for idx, raw := range strings.Split(text, "\n") {
		num := idx + 1
		raw = strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		if raw[indent] == '\t' {
			return &IndentationError{Msg: "tab character in indentation", Line: num}
		}

		// Trailing spaces are never significant; a trailing tab may be an
		// empty last field of a tab-delimited row and stays.
		text := strings.TrimRight(raw[indent:], " ")
		p.lines = append(p.lines, line{num: num, indent: indent, text: text})
	}

	unit := p.opts.Indent
	if unit == 0 {
		for _, ln := range p.lines {
			if ln.indent > 0 {
				unit = ln.indent
				break
			}
		}
		if unit == 0 {
			unit = 2
		}
	}
	p.unit = unit

	for i := range p.lines {
		ln := &p.lines[i]
		if ln.indent%unit != 0 {
			return &IndentationError{
				Msg:  fmt.Sprintf("indent of %d is not a multiple of the %d-space unit", ln.indent, unit),
				Line: ln.num,
			}
		}
		ln.level = ln.indent / unit
	}
	return nil
}

func (p *parser) parseDocument() (Value, error) {
	first := p.lines[0]
	if first.level != 0 {
		return nil, &IndentationError{Msg: "unexpected indent", Line: first.num}
	}

	if first.text == "{}" {
		p.pos++
		return NewObject(), nil
	}

	kl, ok, err := p.parseKeyLine(first.text, first.num)
	if err != nil {
		return nil, err
	}
	if ok {
		if !kl.hasKey {
			p.pos++
			return p.parseArrayValue(kl, 1)
		}
		return p.parseObjectBlock(0)
	}

	// Single-line root value: an inline array or a bare scalar.
	p.pos++
	return p.parseInlineValue(first.text, first.num)
}

type lineKind uint8

const (
	kindInline  lineKind = iota // key: <scalar or inline form>
	kindOpen                    // key: with nothing after the colon
	kindTabular                 // key[N]{h1,h2}: or [N]{h1,h2}:
	kindList                    // key[N]: or [N]:
)

// A keyLine is one classified line of the grammar's key productions.
type keyLine struct {
	hasKey  bool
	key     string
	kind    lineKind
	value   string // raw inline remainder for kindInline
	count   int
	delim   Delimiter
	headers []string
	num     int
}

// parseKeyLine classifies a line against the key productions, in priority
// order: inline value, open block, tabular header, list header. The second
// return is false when the line matches none of them (the caller decides
// whether that is a scalar or an error).
func (p *parser) parseKeyLine(text string, num int) (keyLine, bool, error) {
	kl := keyLine{num: num, delim: Comma}
	i := 0

	switch {
	case text[0] == '"':
		key, end, err := scanQuoted(text, 0, num)
		if err != nil {
			return kl, false, err
		}
		kl.key = key
		kl.hasKey = true
		i = end

	case text[0] != '[':
		j := 0
		for j < len(text) && text[j] != ':' && text[j] != '[' {
			j++
		}
		if j == len(text) || j == 0 {
			return kl, false, nil
		}
		kl.key = text[:j]
		kl.hasKey = true
		i = j
	}

	if i < len(text) && text[i] == '[' {
		ok, err := p.parseArrayHeader(&kl, text, i, num)
		return kl, ok, err
	}

	if i >= len(text) || text[i] != ':' {
		return kl, false, nil
	}
	if i+1 == len(text) {
		kl.kind = kindOpen
		return kl, true, nil
	}
	if text[i+1] != ' ' {
		return kl, false, nil
	}

	kl.value = strings.TrimSpace(text[i+2:])
	if kl.value == "" {
		kl.kind = kindOpen
	} else {
		kl.kind = kindInline
	}
	return kl, true, nil
}

// parseArrayHeader parses the `[count]` / `[count<delim>]` bracket group,
// the optional `{h1,h2}` field list, and the trailing colon of an array
// header. Header field names are always comma-joined regardless of the row
// delimiter, which is instead declared by an indicator character after the
// count.
func (p *parser) parseArrayHeader(kl *keyLine, text string, i, num int) (bool, error) {
	j := i + 1
	start := j
	for j < len(text) && isDigit(text[j]) {
		j++
	}
	if j == start {
		return false, nil
	}
	count, err := strconv.Atoi(text[start:j])
	if err != nil {
		return false, nil
	}
	kl.count = count

	if j < len(text) && (text[j] == '\t' || text[j] == '|') {
		kl.delim = Delimiter(text[j])
		j++
	}
	if j >= len(text) || text[j] != ']' {
		return false, nil
	}
	j++

	kl.kind = kindList
	if j < len(text) && text[j] == '{' {
		end, err := findHeaderEnd(text, j+1, num)
		if err != nil {
			return false, err
		}
		if end < 0 {
			return false, nil
		}
		headers, err := p.parseHeaderNames(text[j+1:end], num)
		if err != nil {
			return false, err
		}
		kl.headers = headers
		kl.kind = kindTabular
		j = end + 1
	}

	if j >= len(text) || text[j] != ':' {
		return false, nil
	}
	if rest := strings.TrimSpace(text[j+1:]); rest != "" {
		return false, &UnexpectedTokenError{Token: rest, Line: num}
	}
	return true, nil
}

// findHeaderEnd locates the closing brace of a header field list, skipping
// quoted field names. Returns -1 when the brace is missing.
func findHeaderEnd(text string, from, num int) (int, error) {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '}':
			return i, nil
		case '"':
			_, end, err := scanQuoted(text, i, num)
			if err != nil {
				return 0, err
			}
			i = end - 1
		}
	}
	return -1, nil
}

func (p *parser) parseHeaderNames(inner string, num int) ([]string, error) {
	raw, err := splitFields(inner, Comma, num)
	if err != nil {
		return nil, err
	}

	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		name := r
		if name != "" && name[0] == '"' {
			unquoted, end, err := scanQuoted(name, 0, num)
			if err != nil {
				return nil, err
			}
			if end != len(name) {
				return nil, &UnexpectedTokenError{Token: name[end:], Line: num}
			}
			name = unquoted
		}
		if seen[name] {
			return nil, &DuplicateKeyError{Key: name, Line: num}
		}
		seen[name] = true
		headers[i] = name
	}
	return headers, nil
}

// parseObjectBlock parses consecutive key lines at the given level into an
// Object.
func (p *parser) parseObjectBlock(level int) (Value, error) {
	fields, err := p.parseObjectFields(level, nil, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return NewObject(fields...), nil
}

func (p *parser) parseObjectFields(level int, fields []Field, seen map[string]bool) ([]Field, error) {
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.level < level {
			break
		}
		if ln.level > level {
			return nil, &IndentationError{Msg: "unexpected indent", Line: ln.num}
		}

		kl, ok, err := p.parseKeyLine(ln.text, ln.num)
		if err != nil {
			return nil, err
		}
		if !ok || !kl.hasKey {
			return nil, &UnexpectedTokenError{Token: ln.text, Line: ln.num}
		}
		p.pos++

		v, err := p.parseFieldValue(kl, level+1)
		if err != nil {
			return nil, err
		}
		fields, err = p.appendField(fields, seen, kl.key, v, ln.num)
		if err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// parseFieldValue parses the value belonging to a classified key line.
// Nested content, when any, lives at childLevel.
func (p *parser) parseFieldValue(kl keyLine, childLevel int) (Value, error) {
	switch kl.kind {
	case kindInline:
		return p.parseInlineValue(kl.value, kl.num)

	case kindOpen:
		if p.pos < len(p.lines) && p.lines[p.pos].level >= childLevel {
			return p.parseObjectBlock(childLevel)
		}
		// A key with no inline value and no nested block decodes to null.
		return Null{}, nil

	case kindTabular:
		return p.parseTabularRows(kl, childLevel)

	case kindList:
		return p.parseListElements(kl, childLevel)
	}
	return nil, &UnexpectedTokenError{Token: kl.key, Line: kl.num}
}

// parseArrayValue dispatches a keyless array header (root level or after a
// dash).
func (p *parser) parseArrayValue(kl keyLine, childLevel int) (Value, error) {
	if kl.kind == kindTabular {
		return p.parseTabularRows(kl, childLevel)
	}
	return p.parseListElements(kl, childLevel)
}

// parseInlineValue parses the remainder of a line: an empty object, an
// inline array, or a single scalar.
func (p *parser) parseInlineValue(s string, num int) (Value, error) {
	if s == "{}" {
		return NewObject(), nil
	}

	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, &UnexpectedTokenError{Token: s, Line: num}
		}
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return NewList(), nil
		}

		raw, err := splitFields(inner, sniffDelimiter(inner), num)
		if err != nil {
			return nil, err
		}
		items := make([]Value, len(raw))
		for i, f := range raw {
			if items[i], err = parseScalar(f, num); err != nil {
				return nil, err
			}
		}
		return NewList(items...), nil
	}

	return parseScalar(s, num)
}

// parseTabularRows parses the rows of a tabular array. Every line one level
// below the header is a row; each row must have exactly as many fields as
// the header declares.
func (p *parser) parseTabularRows(kl keyLine, level int) (Value, error) {
	var elems []Value
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.level < level {
			break
		}
		if ln.level > level {
			return nil, &IndentationError{Msg: "unexpected indent", Line: ln.num}
		}

		raw, err := splitFields(ln.text, kl.delim, ln.num)
		if err != nil {
			return nil, err
		}
		if len(raw) != len(kl.headers) {
			return nil, &RowShapeError{Expected: len(kl.headers), Actual: len(raw), Line: ln.num}
		}

		fields := make([]Field, len(raw))
		for i := range raw {
			v, err := parseScalar(raw[i], ln.num)
			if err != nil {
				return nil, err
			}
			fields[i] = NewField(kl.headers[i], v)
		}
		elems = append(elems, NewObject(fields...))
		p.pos++
	}

	if err := p.checkCount(kl, len(elems)); err != nil {
		return nil, err
	}
	return NewList(elems...), nil
}

// parseListElements parses the dash-marked elements of a non-tabular
// array. Lines without a dash are tolerated as scalar elements.
func (p *parser) parseListElements(kl keyLine, level int) (Value, error) {
	var elems []Value
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.level < level {
			break
		}
		if ln.level > level {
			return nil, &IndentationError{Msg: "unexpected indent", Line: ln.num}
		}
		p.pos++

		v, err := p.parseListElement(ln, level)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}

	if err := p.checkCount(kl, len(elems)); err != nil {
		return nil, err
	}
	return NewList(elems...), nil
}

func (p *parser) parseListElement(ln line, level int) (Value, error) {
	if ln.text == "-" {
		return p.parseBareDash(level)
	}
	if strings.HasPrefix(ln.text, "- ") {
		return p.parseDashContent(strings.TrimSpace(ln.text[2:]), ln, level)
	}
	return p.parseInlineValue(ln.text, ln.num)
}

// parseBareDash handles a dash with nothing after it: an object whose
// entries all live one level deeper, or null when no block follows.
func (p *parser) parseBareDash(level int) (Value, error) {
	if p.pos < len(p.lines) && p.lines[p.pos].level > level {
		return p.parseObjectBlock(level + 1)
	}
	return Null{}, nil
}

func (p *parser) parseDashContent(content string, ln line, level int) (Value, error) {
	if content == "" {
		return p.parseBareDash(level)
	}

	kl, ok, err := p.parseKeyLine(content, ln.num)
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.parseInlineValue(content, ln.num)
	}
	kl.num = ln.num

	if !kl.hasKey {
		// Keyless array header after the dash.
		return p.parseArrayValue(kl, level+1)
	}

	// The dash line carries the element object's first entry; further
	// entries continue one level deeper.
	seedVal, err := p.parseFieldValue(kl, level+1)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	fields, err := p.appendField(nil, seen, kl.key, seedVal, ln.num)
	if err != nil {
		return nil, err
	}
	fields, err = p.parseObjectFields(level+1, fields, seen)
	if err != nil {
		return nil, err
	}
	return NewObject(fields...), nil
}

func (p *parser) checkCount(kl keyLine, actual int) error {
	if actual == kl.count {
		return nil
	}
	// Lenient mode tolerates fewer elements than declared, never more.
	if p.opts.Strict || actual > kl.count {
		return &ArrayLengthMismatchError{Key: kl.key, Expected: kl.count, Actual: actual, Line: kl.num}
	}
	return nil
}

// appendField adds a decoded field, rejecting duplicates and expanding
// dotted paths when enabled.
func (p *parser) appendField(fields []Field, seen map[string]bool, key string, v Value, num int) ([]Field, error) {
	if p.opts.ExpandPaths == ExpandSafe {
		if segs, ok := expandablePath(key); ok {
			return p.mergePath(fields, seen, segs, v, num)
		}
	}
	if seen[key] {
		return nil, &DuplicateKeyError{Key: key, Line: num}
	}
	seen[key] = true
	return append(fields, NewField(key, v)), nil
}

// mergePath grafts an expanded dotted key onto the fields collected so far,
// merging object layers that share a prefix with an earlier path.
func (p *parser) mergePath(fields []Field, seen map[string]bool, segs []string, v Value, num int) ([]Field, error) {
	nested := v
	for i := len(segs) - 1; i >= 1; i-- {
		nested = NewObject(NewField(segs[i], nested))
	}

	head := segs[0]
	if !seen[head] {
		seen[head] = true
		return append(fields, NewField(head, nested)), nil
	}
	for i := range fields {
		if fields[i].Name == head {
			merged, err := mergeObjects(fields[i].Value, nested, num)
			if err != nil {
				return nil, err
			}
			fields[i].Value = merged
			return fields, nil
		}
	}
	return nil, &DuplicateKeyError{Key: head, Line: num}
}

func mergeObjects(a, b Value, num int) (Value, error) {
	ao, aok := a.(Object)
	bo, bok := b.(Object)
	if !aok || !bok {
		return nil, &DuplicateKeyError{Key: firstKey(a, b), Line: num}
	}

	merged := append([]Field(nil), ao.fields...)
	for _, bf := range bo.fields {
		found := false
		for i := range merged {
			if merged[i].Name == bf.Name {
				m, err := mergeObjects(merged[i].Value, bf.Value, num)
				if err != nil {
					return nil, err
				}
				merged[i].Value = m
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, bf)
		}
	}
	return NewObject(merged...), nil
}

func firstKey(a, b Value) string {
	if o, ok := a.(Object); ok && o.Len() > 0 {
		return o.fields[0].Name
	}
	if o, ok := b.(Object); ok && o.Len() > 0 {
		return o.fields[0].Name
	}
	return ""
}
