package model

import (
	"math"
	"strconv"
)

// ColumnType represents the type of an attribute column.
type ColumnType int

const (
	// ColumnTypeText represents a categorical/text column.
	ColumnTypeText ColumnType = iota
	// ColumnTypeReal represents a numeric column.
	ColumnTypeReal
)

// String returns the SQL type string for the column type.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Value is a single attribute cell: either a real number, a text value,
// or null. The zero value is a null text value.
//
// Value is comparable and safe to use as a map key: a null real carries
// Num == 0, and NaN reals are normalized to null at construction.
type Value struct {
	Type ColumnType
	Num  float64
	Str  string
	Null bool
}

// Real returns a numeric value. NaN is normalized to a null real so that
// values remain usable as map keys.
func Real(v float64) Value {
	if math.IsNaN(v) {
		return Value{Type: ColumnTypeReal, Null: true}
	}
	return Value{Type: ColumnTypeReal, Num: v}
}

// Text returns a categorical/text value.
func Text(s string) Value {
	return Value{Type: ColumnTypeText, Str: s}
}

// NullValue returns the null value for the given column type.
func NullValue(ct ColumnType) Value {
	return Value{Type: ct, Null: true}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Null
}

// Float returns the numeric value, or NaN when the value is null or text.
func (v Value) Float() float64 {
	if v.Null || v.Type != ColumnTypeReal {
		return math.NaN()
	}
	return v.Num
}

// String renders the value for display and file output. Nulls render as
// the empty string.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	if v.Type == ColumnTypeReal {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

// ParseValue parses a raw cell into a value of the given column type.
// Empty cells become null; unparsable numeric cells become null reals.
func ParseValue(raw string, ct ColumnType) Value {
	if raw == "" {
		return NullValue(ct)
	}
	if ct == ColumnTypeReal {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return NullValue(ct)
		}
		return Real(f)
	}
	return Text(raw)
}

// InferColumnType infers a column type from raw cell values. A column is
// real only when every non-empty cell parses as a float; otherwise text.
func InferColumnType(values []string) ColumnType {
	seen := false
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return ColumnTypeText
		}
		seen = true
	}
	if !seen {
		return ColumnTypeText
	}
	return ColumnTypeReal
}
