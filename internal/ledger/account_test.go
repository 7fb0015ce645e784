package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentCode(t *testing.T) {
	tests := []struct {
		code, parent string
	}{
		{"31.1.2", "31.1"},
		{"31.1.2.1", "31.1.2"},
		{"31", ""},
		{"311", "31"},
		{"3111", "311"},
		{"3", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.parent, ParentCode(tt.code), tt.code)
	}
}

func TestLevelAndType(t *testing.T) {
	assert.Equal(t, 0, Level("3"))
	assert.Equal(t, 3, Level("31.1.2.1"))

	assert.Equal(t, TypeClasse, TypeForCode("3"))
	assert.Equal(t, TypeGrupo, TypeForCode("31"))
	assert.Equal(t, TypeSubgrupo, TypeForCode("31.1"))
	assert.Equal(t, TypeConta, TypeForCode("31.1.2"))
	assert.Equal(t, TypeSubconta, TypeForCode("31.1.2.1"))
	assert.Equal(t, TypeSubconta, TypeForCode("31.1.2.1.5"))
}

func TestNatureForCode(t *testing.T) {
	assert.Equal(t, NatureDebito, NatureForCode("72.1"))
	assert.Equal(t, NatureCredito, NatureForCode("62.1"))
	assert.Equal(t, NatureAmbos, NatureForCode("34.5"))
}

func TestIsDescendant(t *testing.T) {
	assert.True(t, IsDescendant("31.1.2.1", "31"))
	assert.True(t, IsDescendant("31.1.2.1", "3"))
	assert.False(t, IsDescendant("31", "31"))
	assert.False(t, IsDescendant("32.1", "31"))
	assert.True(t, IsDescendant("31", "3"))
	assert.True(t, IsDescendant("311", "3"))
	assert.False(t, IsDescendant("3", "31"))
}

func TestRollupParent(t *testing.T) {
	assert.Equal(t, "3", rollupParent("31"))
	assert.Equal(t, "31", rollupParent("311"))
	assert.Equal(t, "31.1", rollupParent("31.1.2"))
	assert.Empty(t, rollupParent("3"))
	assert.Empty(t, rollupParent(""))
}

func TestCompareCodes(t *testing.T) {
	assert.Negative(t, CompareCodes("3", "31"))
	assert.Negative(t, CompareCodes("31", "4"))
	assert.Negative(t, CompareCodes("34.5.2", "34.5.10"))
	assert.Negative(t, CompareCodes("34.5", "34.5.1"))
	assert.Positive(t, CompareCodes("62.9", "62.1"))
	assert.Zero(t, CompareCodes("72.1", "72.1"))
}

func TestAccountNormalizeAndValidate(t *testing.T) {
	a := Account{Code: " 62.1 ", Description: " Serviços "}
	a.Normalize()
	require.NoError(t, a.Validate())
	assert.Equal(t, "62.1", a.Code)
	assert.Equal(t, "Serviços", a.Description)
	assert.Equal(t, TypeSubgrupo, a.Type)
	assert.Equal(t, NatureCredito, a.Nature)
	assert.Equal(t, "62", a.ParentCode)

	bad := Account{Code: "0.1", Description: "x"}
	bad.Normalize()
	assert.ErrorIs(t, bad.Validate(), ErrInvalidAccountCode)

	empty := Account{Code: "62.2"}
	empty.Normalize()
	assert.ErrorIs(t, empty.Validate(), ErrEmptyDescription)

	wrongType := Account{Code: "62.2", Description: "x", Type: "FOO"}
	wrongType.Normalize()
	assert.ErrorIs(t, wrongType.Validate(), ErrInvalidAccountType)
}
