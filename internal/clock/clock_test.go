package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matchcore/internal/clock"
)

func TestClockTick(t *testing.T) {
	c := clock.New()
	assert.Equal(t, uint64(0), c.Now())
	assert.Equal(t, uint64(1), c.Tick(0))
	assert.Equal(t, uint64(4), c.Tick(3))
	assert.Equal(t, uint64(4), c.Now())
}

func TestIDAllocatorNext(t *testing.T) {
	a := clock.NewIDAllocator()
	assert.Equal(t, uint64(0), a.Peek())
	assert.Equal(t, uint64(1), a.Next())
	assert.Equal(t, uint64(2), a.Next())
	assert.Equal(t, uint64(2), a.Peek())
}
