package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestINSS(t *testing.T) {
	assert.True(t, dec("4500").Equal(INSS(dec("150000"))))
	assert.True(t, dec("0").Equal(INSS(dec("0"))))
	assert.True(t, dec("0").Equal(INSS(dec("-10"))))
	assert.True(t, dec("3.70").Equal(INSS(dec("123.45"))), "rounded to 2 decimals")
}

func TestINSSEntity(t *testing.T) {
	assert.True(t, dec("12000").Equal(INSSEntity(dec("150000"))))
	assert.True(t, decimal.Zero.Equal(INSSEntity(decimal.Zero)))
}

func TestIRT(t *testing.T) {
	tests := []struct {
		name  string
		gross string
		want  string
	}{
		{"zero", "0", "0"},
		{"negative", "-5000", "0"},
		{"exempt", "100000", "0"},
		{"first taxed bracket", "150000", "5915"}, // 145500 taxable
		{"second bracket", "180000", "16436"},     // 174600: 12500 + 24600*16%
		{"third bracket", "250000", "38900"},      // 242500: 31250 + 42500*18%
		{"fifth bracket", "600000", "103650"},     // 582000: 87250 + 82000*20%
		{"top bracket", "20000000", "4692248"},    // 19400000: 2342248 + 9400000*25%
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gross := dec(tt.gross)
			got := IRT(gross, INSS(gross))
			assert.True(t, dec(tt.want).Equal(got), "IRT(%s) = %s, want %s", tt.gross, got, tt.want)
		})
	}
}

func TestIRTIsDeterministic(t *testing.T) {
	gross := dec("345678.91")
	first := IRT(gross, INSS(gross))
	for i := 0; i < 5; i++ {
		assert.True(t, first.Equal(IRT(gross, INSS(gross))))
	}
	assert.Equal(t, int32(-2), first.Exponent(), "two decimal places")
}

func TestWithholdings(t *testing.T) {
	inss, irt := Default().Withholdings(dec("150000"))
	assert.True(t, dec("4500").Equal(inss))
	assert.True(t, dec("5915").Equal(irt))
}

func TestNewRejectsBadTables(t *testing.T) {
	_, err := New(dec("3"), dec("8"), nil)
	assert.ErrorIs(t, err, ErrInvalidBrackets)

	_, err = New(dec("3"), dec("8"), []Bracket{{From: dec("10")}})
	assert.ErrorIs(t, err, ErrInvalidBrackets)

	_, err = New(dec("3"), dec("8"), []Bracket{{From: dec("0")}, {From: dec("0")}})
	assert.ErrorIs(t, err, ErrInvalidBrackets)

	c, err := New(dec("3"), dec("8"), DefaultBrackets())
	require.NoError(t, err)
	assert.Len(t, c.Brackets, 12)
}
