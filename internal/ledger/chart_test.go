package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChart(t *testing.T) *Chart {
	t.Helper()
	c, err := NewChart(DefaultChart())
	require.NoError(t, err)
	return c
}

func TestDefaultChartIsConsistent(t *testing.T) {
	c := newTestChart(t)
	for _, a := range c.All() {
		parent := rollupParent(a.Code)
		if parent == "" {
			assert.Equal(t, TypeClasse, a.Type, a.Code)
			continue
		}
		assert.True(t, c.Exists(parent), "parent of %s missing", a.Code)
	}
	for _, code := range []string{"31.1.2.1", "34.5.3.1", "34.5.2.1", "62.1", "61.1", "62.9", "61.2", "71.1", "32.1", "72.1", "36.1", "36.2", "34.3", "34.8", "43.1"} {
		assert.True(t, c.Exists(code), code)
	}
}

func TestChartAddRejectsDuplicate(t *testing.T) {
	c := newTestChart(t)
	_, err := c.Add(Account{Code: "62.1", Description: "Outra"})
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	a, err := c.Add(Account{Code: "62.1.1", Description: "Consultoria"})
	require.NoError(t, err)
	assert.Equal(t, "62.1", a.ParentCode)
	assert.Equal(t, TypeConta, a.Type)
}

func TestChartUpdate(t *testing.T) {
	c := newTestChart(t)
	_, err := c.Add(Account{Code: "62.1.1", Description: "Consultoria"})
	require.NoError(t, err)

	t.Run("same code keeps its slot", func(t *testing.T) {
		a, err := c.Update("62.1.1", Account{Code: "62.1.1", Description: "Consultoria técnica"})
		require.NoError(t, err)
		assert.Equal(t, "Consultoria técnica", a.Description)
	})

	t.Run("recode to an existing code", func(t *testing.T) {
		_, err := c.Update("62.1.1", Account{Code: "62.9", Description: "x"})
		assert.ErrorIs(t, err, ErrDuplicateAccount)
	})

	t.Run("recode leaf", func(t *testing.T) {
		a, err := c.Update("62.1.1", Account{Code: "62.1.2", Description: "Consultoria"})
		require.NoError(t, err)
		assert.Equal(t, "62.1", a.ParentCode)
		assert.False(t, c.Exists("62.1.1"))
		assert.True(t, c.Exists("62.1.2"))
	})

	t.Run("recode parent", func(t *testing.T) {
		_, err := c.Update("62.1", Account{Code: "62.3", Description: "x"})
		assert.ErrorIs(t, err, ErrHasChildren)
		assert.True(t, c.Exists("62.1"))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := c.Update("99.9", Account{Code: "99.9", Description: "x"})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestChartDelete(t *testing.T) {
	c := newTestChart(t)
	assert.ErrorIs(t, c.Delete("34.5"), ErrHasChildren)
	require.NoError(t, c.Delete("34.5.6"))
	assert.False(t, c.Exists("34.5.6"))
	assert.ErrorIs(t, c.Delete("34.5.6"), ErrAccountNotFound)
}

func TestAncestors(t *testing.T) {
	assert.Equal(t, []string{"31.1.2", "31.1", "31", "3"}, Ancestors("31.1.2.1"))
	assert.Empty(t, Ancestors("3"))
	assert.Equal(t, []string{"3"}, Ancestors("31"))
	assert.Equal(t, []string{"31", "3"}, Ancestors("311"))
}

func TestChartGroupsBelongToClass(t *testing.T) {
	c := newTestChart(t)
	g, ok := c.Get("34")
	require.True(t, ok)
	assert.Empty(t, g.ParentCode)

	var codes []string
	for _, a := range c.Children("3") {
		codes = append(codes, a.Code)
	}
	assert.Contains(t, codes, "34")
	assert.ErrorIs(t, c.Delete("3"), ErrHasChildren)
}

func TestChartSearch(t *testing.T) {
	c := newTestChart(t)

	res := c.Search("34.5", 20)
	require.NotEmpty(t, res)
	assert.Equal(t, "34.5", res[0].Code)

	res = c.Search("prestacoes", 5)
	require.NotEmpty(t, res)
	assert.Equal(t, "62", res[0].Code)

	res = c.Search("remuneracoes", 5)
	codes := make([]string, 0, len(res))
	for _, a := range res {
		codes = append(codes, a.Code)
	}
	assert.Contains(t, codes, "36.1")
	assert.Contains(t, codes, "72.1")

	assert.Len(t, c.Search("", 3), 3)
}
