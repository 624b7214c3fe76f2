package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddMergesSameProductAndVariant(t *testing.T) {
	c := New()
	variant := VariantKey(map[string]string{"color": "black"})

	c.Add(1, variant, 1, 99.0)
	c.Add(1, variant, 1, 99.0)

	lines := c.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddKeepsDifferentVariantsSeparate(t *testing.T) {
	c := New()

	c.Add(1, VariantKey(map[string]string{"color": "black"}), 1, 99.0)
	c.Add(1, VariantKey(map[string]string{"color": "silver"}), 1, 99.0)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Count())
}

func TestQuantityBelowOneRemovesLine(t *testing.T) {
	c := New()

	c.Add(1, "", 1, 50.0)
	c.Add(1, "", -1, 50.0)

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Lines())
}

func TestAddNonPositiveQuantityIsNoop(t *testing.T) {
	c := New()

	c.Add(1, "", 0, 50.0)
	c.Add(2, "", -3, 50.0)

	assert.Equal(t, 0, c.Len())
}

func TestDerivedTotals(t *testing.T) {
	c := New()

	c.Add(1, "", 2, 100.0)
	c.Add(2, "", 1, 50.0)

	assert.Equal(t, 250.0, c.Subtotal())
	assert.Equal(t, 3, c.Count())
}

func TestVariantKeyIsOrderIndependent(t *testing.T) {
	a := VariantKey(map[string]string{"color": "black", "size": "XL"})
	b := VariantKey(map[string]string{"size": "XL", "color": "black"})

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
	assert.Empty(t, VariantKey(nil))
}

func TestLinesPreserveInsertionOrder(t *testing.T) {
	c := New()

	c.Add(3, "", 1, 10.0)
	c.Add(1, "", 1, 20.0)
	c.Add(2, "", 1, 30.0)

	lines := c.Lines()
	assert.Equal(t, int64(3), lines[0].ProductID)
	assert.Equal(t, int64(1), lines[1].ProductID)
	assert.Equal(t, int64(2), lines[2].ProductID)
}
