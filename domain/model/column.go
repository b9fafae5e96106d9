package model

// Column is a named, typed attribute column.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

// NewColumn creates an empty column of the given type.
func NewColumn(name string, ct ColumnType) *Column {
	return &Column{Name: name, Type: ct}
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	return len(c.Values)
}

// Append adds a value to the column. Values of the wrong type are coerced
// to null so a column never mixes types.
func (c *Column) Append(v Value) {
	if v.Type != c.Type {
		v = NullValue(c.Type)
	}
	c.Values = append(c.Values, v)
}

// AppendNull adds a null value to the column.
func (c *Column) AppendNull() {
	c.Values = append(c.Values, NullValue(c.Type))
}

// Set assigns the value at row i, coercing wrong-typed values to null.
func (c *Column) Set(i int, v Value) {
	if v.Type != c.Type {
		v = NullValue(c.Type)
	}
	c.Values[i] = v
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Type: c.Type}
	out.Values = append(out.Values, c.Values...)
	return out
}

// Floats returns the column as a float slice, with NaN for nulls and
// text values. Useful for feeding numeric columns to interpolators.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		out[i] = v.Float()
	}
	return out
}
