package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	t.Parallel()

	c := New()
	c.SetVariable("w", 40)
	c.SetVariable("h", 20)
	c.SetVariable("cm", 72.27/2.54)

	tests := []struct {
		expr string
		want float64
	}{
		{"1", 1},
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10-4-3", 3},
		{"12/4/3", 1},
		{"7%4", 3},
		{"-w", -40},
		{"--2", 2},
		{"+3", 3},
		{"w/2", 20},
		{"2h", 40},
		{"3(w+1)", 123},
		{"0.5 * h", 10},
		{".5w", 20},
		{"2.54cm", 72.27},
		{"  ( h ) ", 20},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			got, err := c.Eval(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	c := New()
	c.SetVariable("x", 1)

	tests := []struct {
		expr    string
		wantErr error
	}{
		{"", ErrEmptyExpression},
		{"   ", ErrEmptyExpression},
		{"y", ErrUndefined},
		{"1/0", ErrDivisionByZero},
		{"1%(x-1)", ErrDivisionByZero},
		{"(1+2", ErrSyntax},
		{"1+", ErrSyntax},
		{"1 2", ErrSyntax},
		{"1..2", ErrSyntax},
		{"#", ErrSyntax},
		{"1)", ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			_, err := c.Eval(tt.expr)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVariables(t *testing.T) {
	t.Parallel()

	var c Calculator
	_, ok := c.Variable("a")
	assert.False(t, ok)
	c.SetVariable("a", 2)
	c.SetVariable("a", 3)
	v, ok := c.Variable("a")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}
