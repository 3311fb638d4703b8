package table

import "strconv"

// Kind identifies what a Cell holds.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindNumber
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "missing"
	}
}

// Cell is a single table value: a string, a number, or missing.
//
// Numbers keep the text they were parsed from so a table can be written back
// out without reformatting ("22" stays "22", not "22.0").
// The zero Cell is missing.
type Cell struct {
	kind Kind
	text string
	num  float64
}

// Missing returns the missing-value marker.
func Missing() Cell {
	return Cell{}
}

// String returns a textual cell. The text "NaN" is stored as missing, the
// same way it loads from CSV.
func String(s string) Cell {
	return Cell{kind: KindString, text: s}
}

// Number returns a numeric cell with its source text.
func Number(text string, v float64) Cell {
	return Cell{kind: KindNumber, text: text, num: v}
}

// Kind reports what the cell holds.
func (c Cell) Kind() Kind {
	return c.kind
}

// IsMissing reports whether c is the missing-value marker.
func (c Cell) IsMissing() bool {
	return c.kind == KindMissing
}

// Text returns the value of a textual cell.
// ok is false for numbers and missing cells.
func (c Cell) Text() (s string, ok bool) {
	if c.kind != KindString {
		return "", false
	}
	return c.text, true
}

// Float returns the value of a numeric cell.
func (c Cell) Float() (v float64, ok bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// Raw returns the serialized form of the cell. Missing cells serialize as "".
func (c Cell) Raw() string {
	return c.text
}

// GoString makes test failures readable.
func (c Cell) GoString() string {
	switch c.kind {
	case KindString:
		return "String(" + strconv.Quote(c.text) + ")"
	case KindNumber:
		return "Number(" + c.text + ")"
	default:
		return "Missing()"
	}
}
