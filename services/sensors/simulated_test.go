package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulatedBounds(t *testing.T) {
	source := NewSimulated(1)
	for i := 0; i < 100; i++ {
		reading, err := source.Read()
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, reading.Temperature, 15.0)
		assert.LessOrEqual(t, reading.Temperature, 35.0)
		assert.GreaterOrEqual(t, reading.Humidity, 30.0)
		assert.LessOrEqual(t, reading.Humidity, 70.0)
		assert.Contains(t, lightLevels, reading.Light)
	}
}

func TestSimulatedDeterministic(t *testing.T) {
	a := NewSimulated(42)
	b := NewSimulated(42)
	ra, _ := a.Read()
	rb, _ := b.Read()
	assert.Equal(t, ra, rb)
}
