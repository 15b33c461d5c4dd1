package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvance(t *testing.T) {
	c := NewFake(0)
	c.Advance(90 * time.Second)
	assert.Equal(t, uint32(90000), c.NowMillis())

	c.Set(100)
	assert.Equal(t, uint32(100), c.NowMillis())
}

func TestFakeAdvanceWraps(t *testing.T) {
	c := NewFake(math.MaxUint32 - 499)
	c.Advance(time.Second)
	assert.Equal(t, uint32(500), c.NowMillis())
}

func TestSystemStartsNearZero(t *testing.T) {
	c := NewSystem()
	assert.Less(t, c.NowMillis(), uint32(1000))
}
