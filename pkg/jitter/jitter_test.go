package jitter

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay_ExponentialAndCapped(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, time.Second, 0)

	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
	assert.Equal(t, 400*time.Millisecond, b.Delay(2))
	assert.Equal(t, time.Second, b.Delay(10))
}

func TestDelay_BaseAboveMaxIsCapped(t *testing.T) {
	assert.Equal(t, time.Second, NewBackoff(3*time.Second, time.Second, 0).Delay(0))
}

func TestDelay_JitterWithinBounds(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, time.Second, DefaultFactor)
	for i := 0; i < 100; i++ {
		d := b.Delay(0)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 150*time.Millisecond)
	}
}

func TestDelay_SeededSourceIsDeterministic(t *testing.T) {
	b := NewBackoff(time.Second, 10*time.Second, DefaultFactor)

	a := b.WithSource(rand.New(rand.NewSource(7))).Delay(1)
	c := b.WithSource(rand.New(rand.NewSource(7))).Delay(1)
	assert.Equal(t, a, c)
}
