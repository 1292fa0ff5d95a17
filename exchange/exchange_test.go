package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionOpposite(t *testing.T) {
	assert.Equal(t, Short, Long.Opposite())
	assert.Equal(t, Long, Short.Opposite())
	assert.Equal(t, None, None.Opposite())
}

func TestDirectionSides(t *testing.T) {
	assert.Equal(t, Buy, Long.OpenSide())
	assert.Equal(t, Sell, Long.CloseSide())

	assert.Equal(t, Sell, Short.OpenSide())
	assert.Equal(t, Buy, Short.CloseSide())
}
