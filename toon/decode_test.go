package toon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDecode(t *testing.T, text string, expected Value) {
	t.Helper()
	actual, err := Decode(text)
	require.NoError(t, err)
	assert.True(t, Equal(expected, actual), "expected %#v, got %#v", expected, actual)
}

func TestDecodeFlatObject(t *testing.T) {
	testDecode(t,
		"name: Alice\nage: 30\nactive: true\nscore: 9.5\nnote: null",
		NewObject(
			NewField("name", NewString("Alice")),
			NewField("age", NewInt(30)),
			NewField("active", NewBool(true)),
			NewField("score", NewFloat(9.5)),
			NewField("note", Null{}),
		))
}

func TestDecodeNestedObject(t *testing.T) {
	testDecode(t,
		"user:\n  name: Alice\n  address:\n    city: Paris",
		NewObject(NewField("user", NewObject(
			NewField("name", NewString("Alice")),
			NewField("address", NewObject(NewField("city", NewString("Paris")))),
		))))
}

func TestDecodeIndentAutoDetect(t *testing.T) {
	// Four-space indentation, detected from the first indented line.
	testDecode(t,
		"user:\n    name: Alice\n    address:\n        city: Paris",
		NewObject(NewField("user", NewObject(
			NewField("name", NewString("Alice")),
			NewField("address", NewObject(NewField("city", NewString("Paris")))),
		))))
}

func TestDecodeIndentExplicit(t *testing.T) {
	d := NewDecoder(DecodeOptions{Indent: 3, Strict: true})
	v, err := d.Decode("a:\n   b: 1")
	require.NoError(t, err)
	assert.True(t, Equal(NewObject(NewField("a", NewObject(NewField("b", NewInt(1))))), v))
}

func TestDecodeInlineArrays(t *testing.T) {
	testDecode(t, "tags: [a,b,c]",
		NewObject(NewField("tags", NewList(NewString("a"), NewString("b"), NewString("c")))))

	testDecode(t, "nums: [1, 2, 3]",
		NewObject(NewField("nums", NewList(NewInt(1), NewInt(2), NewInt(3)))))

	// Delimiter sniffing: pipe, then tab beats pipe.
	testDecode(t, "tags: [a|b|c]",
		NewObject(NewField("tags", NewList(NewString("a"), NewString("b"), NewString("c")))))
	testDecode(t, "tags: [a|b\tc|d]",
		NewObject(NewField("tags", NewList(NewString("a|b"), NewString("c|d")))))

	// Quoted items keep the delimiter inert.
	testDecode(t, `tags: ["a,b",c]`,
		NewObject(NewField("tags", NewList(NewString("a,b"), NewString("c")))))
}

func TestDecodeTabularArray(t *testing.T) {
	expected := NewObject(NewField("users", NewList(
		NewObject(NewField("id", NewInt(1)), NewField("name", NewString("Alice"))),
		NewObject(NewField("id", NewInt(2)), NewField("name", NewString("Bob"))),
	)))

	testDecode(t, "users[2]{id,name}:\n  1,Alice\n  2,Bob", expected)
	testDecode(t, "users[2\t]{id,name}:\n  1\tAlice\n  2\tBob", expected)
	testDecode(t, "users[2|]{id,name}:\n  1|Alice\n  2|Bob", expected)
}

func TestDecodeTabularQuotedFields(t *testing.T) {
	testDecode(t,
		"users[1]{id,name}:\n  1,\"Smith, Jane\"",
		NewObject(NewField("users", NewList(
			NewObject(NewField("id", NewInt(1)), NewField("name", NewString("Smith, Jane"))),
		))))
}

func TestDecodeDashList(t *testing.T) {
	testDecode(t,
		"items[3]:\n  - 1\n  - two\n  - [3,4]",
		NewObject(NewField("items", NewList(
			NewInt(1),
			NewString("two"),
			NewList(NewInt(3), NewInt(4)),
		))))
}

func TestDecodeDashListObjects(t *testing.T) {
	testDecode(t,
		"items[2]:\n  - type: fruit\n    name: apple\n  - type: veg",
		NewObject(NewField("items", NewList(
			NewObject(NewField("type", NewString("fruit")), NewField("name", NewString("apple"))),
			NewObject(NewField("type", NewString("veg"))),
		))))
}

func TestDecodeDashListBareDash(t *testing.T) {
	// A dash with a nested block is an object element; a dash with nothing
	// is null.
	testDecode(t,
		"items[2]:\n  -\n    meta:\n      id: 1\n    name: apple\n  -",
		NewObject(NewField("items", NewList(
			NewObject(
				NewField("meta", NewObject(NewField("id", NewInt(1)))),
				NewField("name", NewString("apple")),
			),
			Null{},
		))))
}

func TestDecodeEmptyForms(t *testing.T) {
	testDecode(t, "{}", NewObject())
	testDecode(t, "[]", NewList())
	testDecode(t, "a: {}", NewObject(NewField("a", NewObject())))
	testDecode(t, "a: []", NewObject(NewField("a", NewList())))
}

func TestDecodeEmptyInput(t *testing.T) {
	// No content at all decodes to null.
	testDecode(t, "", Null{})
	testDecode(t, "\n\n   \n", Null{})
}

func TestDecodeRootValues(t *testing.T) {
	testDecode(t, "hello", NewString("hello"))
	testDecode(t, "42", NewInt(42))
	testDecode(t, "null", Null{})
	testDecode(t, "[1,2,3]", NewList(NewInt(1), NewInt(2), NewInt(3)))

	testDecode(t,
		"[2]{id,name}:\n  1,Alice\n  2,Bob",
		NewList(
			NewObject(NewField("id", NewInt(1)), NewField("name", NewString("Alice"))),
			NewObject(NewField("id", NewInt(2)), NewField("name", NewString("Bob"))),
		))

	testDecode(t,
		"[2]:\n  - 1\n  - 2",
		NewList(NewInt(1), NewInt(2)))
}

func TestDecodeOpenKeyWithNoBlock(t *testing.T) {
	// A key with neither an inline value nor a nested block is null, not an
	// empty object: the text gives no evidence of an object.
	testDecode(t, "key:", NewObject(NewField("key", Null{})))
	testDecode(t, "a: 1\nkey:", NewObject(NewField("a", NewInt(1)), NewField("key", Null{})))
}

func TestDecodeQuotedScalars(t *testing.T) {
	testDecode(t, `s: "true"`, NewObject(NewField("s", NewString("true"))))
	testDecode(t, `s: "42"`, NewObject(NewField("s", NewString("42"))))
	testDecode(t, `s: "line1\nline2"`, NewObject(NewField("s", NewString("line1\nline2"))))
	testDecode(t, `"my key": 1`, NewObject(NewField("my key", NewInt(1))))
}

func TestDecodeBlankLinesIgnored(t *testing.T) {
	testDecode(t,
		"a: 1\n\n\nb: 2\n",
		NewObject(NewField("a", NewInt(1)), NewField("b", NewInt(2))))
}

func TestDecodeCRLF(t *testing.T) {
	testDecode(t,
		"a: 1\r\nb: 2\r\n",
		NewObject(NewField("a", NewInt(1)), NewField("b", NewInt(2))))
}

func TestDecodeIndentationErrors(t *testing.T) {
	test := func(name, text string) {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(text)
			var ie *IndentationError
			require.ErrorAs(t, err, &ie, "got %v", err)
		})
	}

	test("not a multiple of the unit", "a:\n  b: 1\n b: 2")
	test("tab in indentation", "a:\n\tb: 1")
	test("unexpected indent after inline value", "a: 1\n  b: 2")
	test("indented first line", "  a: 1")
	test("over-indented block", "a:\n    b: 1\n  c: 2")
}

func TestDecodeArrayLengthMismatch(t *testing.T) {
	_, err := Decode("items[2]{x,y}:\n  1,2")
	var lm *ArrayLengthMismatchError
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 2, lm.Expected)
	assert.Equal(t, 1, lm.Actual)
	assert.Equal(t, "items", lm.Key)

	_, err = Decode("items[1]:\n  - 1\n  - 2")
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 1, lm.Expected)
	assert.Equal(t, 2, lm.Actual)
}

func TestDecodeLenient(t *testing.T) {
	d := NewDecoder(DecodeOptions{Strict: false})

	v, err := d.Decode("items[2]{x,y}:\n  1,2")
	require.NoError(t, err)
	assert.True(t, Equal(
		NewObject(NewField("items", NewList(
			NewObject(NewField("x", NewInt(1)), NewField("y", NewInt(2))),
		))), v))

	// Fewer elements than declared pass; more never do.
	_, err = d.Decode("items[1]:\n  - 1\n  - 2")
	var lm *ArrayLengthMismatchError
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 1, lm.Expected)
	assert.Equal(t, 2, lm.Actual)
}

func TestDecodeRowShapeError(t *testing.T) {
	// Row field counts are structural and stay checked even in lenient
	// mode.
	for _, d := range []*Decoder{
		NewDecoder(DefaultDecodeOptions()),
		NewDecoder(DecodeOptions{Strict: false}),
	} {
		_, err := d.Decode("items[1]{x,y}:\n  1,2,3")
		var rs *RowShapeError
		require.ErrorAs(t, err, &rs)
		assert.Equal(t, 2, rs.Expected)
		assert.Equal(t, 3, rs.Actual)
	}
}

func TestDecodeDuplicateKey(t *testing.T) {
	_, err := Decode("name: a\nname: b")
	var dk *DuplicateKeyError
	require.ErrorAs(t, err, &dk)
	assert.Equal(t, "name", dk.Key)
	assert.Equal(t, 2, dk.Line)
}

func TestDecodeUnterminatedQuote(t *testing.T) {
	_, err := Decode(`s: "unterminated`)
	var uq *UnterminatedQuoteError
	require.ErrorAs(t, err, &uq)
	assert.Equal(t, 1, uq.Line)
}

func TestDecodeUnexpectedToken(t *testing.T) {
	test := func(name, text string) {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(text)
			var ut *UnexpectedTokenError
			require.ErrorAs(t, err, &ut, "got %v", err)
		})
	}

	test("keyless line in object", "a: 1\njust a string")
	test("content after root scalar", "42\nmore")
	test("content after array header", "items[2]: junk\n  - 1\n  - 2")
}

func TestDecodeExpandPaths(t *testing.T) {
	d := NewDecoder(DecodeOptions{Strict: true, ExpandPaths: ExpandSafe})

	v, err := d.Decode("data.metadata.items: [1,2,3]")
	require.NoError(t, err)
	assert.True(t, Equal(
		NewObject(NewField("data", NewObject(
			NewField("metadata", NewObject(
				NewField("items", NewList(NewInt(1), NewInt(2), NewInt(3))),
			)),
		))), v))

	// Sibling paths sharing a prefix merge into one object.
	v, err = d.Decode("a.b: 1\na.c: 2")
	require.NoError(t, err)
	assert.True(t, Equal(
		NewObject(NewField("a", NewObject(
			NewField("b", NewInt(1)),
			NewField("c", NewInt(2)),
		))), v))
}

func TestDecodeExpandPathsConflict(t *testing.T) {
	d := NewDecoder(DecodeOptions{Strict: true, ExpandPaths: ExpandSafe})

	_, err := d.Decode("a.b: 1\na.b: 2")
	var dk *DuplicateKeyError
	require.ErrorAs(t, err, &dk)
}

func TestDecodeExpandPathsOff(t *testing.T) {
	// Dotted keys stay verbatim by default.
	testDecode(t, "a.b: 1", NewObject(NewField("a.b", NewInt(1))))
}

func TestDecodeLineNumbers(t *testing.T) {
	_, err := Decode("a: 1\n\nb:\n  c: 1\n c: 2")
	var ie *IndentationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 5, ie.Line)
}
