package toon

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// A Delimiter separates the items of inline arrays and the fields of tabular
// rows. It is fixed per document: the encoder writes it into tabular array
// headers (except for Comma, the default), and the decoder reads it back
// from there.
type Delimiter byte

const (
	// Comma is the default delimiter.
	Comma Delimiter = ','
	// Tab produces the fewest tokens for most tokenizers.
	Tab Delimiter = '\t'
	// Pipe is the most readable for humans.
	Pipe Delimiter = '|'
)

func (d Delimiter) valid() bool {
	return d == Comma || d == Tab || d == Pipe
}

// String implements fmt.Stringer for Delimiter.
func (d Delimiter) String() string {
	switch d {
	case Comma:
		return "comma"
	case Tab:
		return "tab"
	case Pipe:
		return "pipe"
	default:
		return "<invalid delimiter>"
	}
}

// Does this string need to be quoted in text form? A bare string must not be
// mistakable for another scalar literal and must not contain any character
// with structural meaning. The check covers all three delimiters regardless
// of which one is active, so that encoded output stays unambiguous under
// delimiter auto-detection.
func stringNeedsQuoting(s string) bool {
	if s == "" || s == "null" || s == "true" || s == "false" {
		return true
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	if s == "-" || strings.HasPrefix(s, "- ") {
		return true
	}
	if looksLikeNumber(s) {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ',', '|', '\t', ':', '"', '\\', '\n', '\r', '[', ']', '{', '}':
			return true
		}
	}
	return false
}

// Does this object key need to be quoted in text form?
func keyNeedsQuoting(key string) bool {
	if key == "" {
		return true
	}
	for i := 0; i < len(key); i++ {
		if !isBareKeyChar(key[i]) {
			return true
		}
	}
	return false
}

func isBareKeyChar(c byte) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	return c == '_' || c == '-' || c == '.'
}

// Is this string lexically a numeric literal? Confirmed against strconv so
// that anything the decoder would read back as a number gets quoted when
// encoded as a string.
func looksLikeNumber(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i >= len(s) || (!isDigit(s[i]) && s[i] != '.') {
		return false
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// encodeString writes a string bare when safe, quoted otherwise.
func encodeString(s string) string {
	if stringNeedsQuoting(s) {
		return quoteString(s)
	}
	return s
}

// encodeKey writes an object key bare when safe, quoted otherwise.
func encodeKey(key string) string {
	if keyNeedsQuoting(key) {
		return quoteString(key)
	}
	return key
}

// quoteString wraps s in double quotes, escaping the quote, backslash, and
// control characters that would break the line-oriented grammar.
func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Floats whose decimal exponent lies strictly inside (-plainExponentLimit,
// plainExponentLimit) are written in plain decimal notation; anything more
// extreme keeps its exponent form.
const plainExponentLimit = 30

// formatFloat renders a float in its canonical text form: the shortest
// representation that round-trips, expanded out of scientific notation for
// all but extreme magnitudes. Integral floats render with no fractional
// part, so NewFloat(42.0) and NewInt(42) share the text "42". NaN and the
// infinities have no numeric literal and render as null.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	if exp := exponentOf(sci); exp > -plainExponentLimit && exp < plainExponentLimit {
		// Expand the shortest form itself; deriving digits from f again
		// (decimal.NewFromFloat) rounds to decimal's reliable digit count
		// and loses the tail of values like 0.1+0.2.
		return decimal.RequireFromString(sci).String()
	}
	return sci
}

// exponentOf extracts the decimal exponent from strconv's 'e' format.
func exponentOf(sci string) int {
	i := strings.IndexByte(sci, 'e')
	if i < 0 {
		return 0
	}
	exp, err := strconv.Atoi(sci[i+1:])
	if err != nil {
		return 0
	}
	return exp
}

// parseScalar parses a single scalar literal. The input has already been
// trimmed of surrounding whitespace. Anything that is not a recognized
// null, boolean, number, or quoted string is a bare string taken verbatim;
// input may originate outside this package's encoder, so no bare-safety is
// assumed here.
func parseScalar(s string, lineNum int) (Value, error) {
	switch s {
	case "":
		return NewString(""), nil
	case "null":
		return Null{}, nil
	case "true":
		return NewBool(true), nil
	case "false":
		return NewBool(false), nil
	}

	if s[0] == '"' {
		val, end, err := scanQuoted(s, 0, lineNum)
		if err != nil {
			return nil, err
		}
		if rest := strings.TrimSpace(s[end:]); rest != "" {
			return nil, &UnexpectedTokenError{Token: rest, Line: lineNum}
		}
		return NewString(val), nil
	}

	if looksLikeNumber(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewInt(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return NewFloat(f), nil
		}
	}

	return NewString(s), nil
}

// scanQuoted scans a quoted string starting at s[start] (which must be a
// double quote). It returns the unescaped contents and the index just past
// the closing quote.
func scanQuoted(s string, start int, lineNum int) (string, int, error) {
	var sb strings.Builder
	i := start + 1
	for i < len(s) {
		switch c := s[i]; c {
		case '"':
			return sb.String(), i + 1, nil
		case '\\':
			if i+1 >= len(s) {
				return "", 0, &UnterminatedQuoteError{Line: lineNum, Column: start + 1}
			}
			switch e := s[i+1]; e {
			case '"', '\\':
				sb.WriteByte(e)
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				// Unknown escape: keep it verbatim.
				sb.WriteByte('\\')
				sb.WriteByte(e)
			}
			i += 2
			continue
		default:
			sb.WriteByte(c)
		}
		i++
	}
	return "", 0, &UnterminatedQuoteError{Line: lineNum, Column: start + 1}
}

// splitFields splits a delimiter-joined line into raw field substrings.
// The delimiter is inert inside quotes. Each field is trimmed of
// surrounding spaces but otherwise untouched; parseScalar handles quoting.
func splitFields(s string, delim Delimiter, lineNum int) ([]string, error) {
	var fields []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			_, end, err := scanQuoted(s, i, lineNum)
			if err != nil {
				return nil, err
			}
			i = end - 1
		case byte(delim):
			fields = append(fields, trimFieldSpace(s[start:i]))
			start = i + 1
		}
	}
	fields = append(fields, trimFieldSpace(s[start:]))
	return fields, nil
}

// trimFieldSpace trims spaces (not tabs; a tab may be the delimiter of an
// enclosing context) from around a field.
func trimFieldSpace(s string) string {
	return strings.Trim(s, " ")
}

// sniffDelimiter detects the delimiter of an inline array body: a tab wins,
// then a pipe, then the comma default. Quoted spans are skipped, which is
// why encoded bare strings never contain any of the three delimiters.
func sniffDelimiter(s string) Delimiter {
	pipe := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			_, end, err := scanQuoted(s, i, 0)
			if err != nil {
				return Comma
			}
			i = end - 1
		case '\t':
			return Tab
		case '|':
			pipe = true
		}
	}
	if pipe {
		return Pipe
	}
	return Comma
}
