// Package jitter считает паузы между повторными попытками: экспонента с ограничением сверху
// и случайной добавкой, чтобы одновременно стартующие реплики не стучались в хранилище синхронно.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultFactor — случайная добавка до 50% паузы.
const DefaultFactor = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

func globalFloat64() float64 {
	randMutex.Lock()
	defer randMutex.Unlock()
	return globalRand.Float64()
}

// Backoff — параметры экспоненциальной паузы.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64

	// rnd подменяется в тестах; nil — общий генератор пакета.
	rnd func() float64
}

func NewBackoff(base, max time.Duration, factor float64) Backoff {
	return Backoff{Base: base, Max: max, Factor: factor}
}

// WithSource возвращает копию с собственным генератором.
func (b Backoff) WithSource(rng *rand.Rand) Backoff {
	b.rnd = rng.Float64
	return b
}

// Delay — пауза перед попыткой attempt+1 (нумерация с нуля): Base*2^attempt, не больше Max,
// плюс случайная добавка в [0, Factor) от этой величины.
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			d = b.Max
			break
		}
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}

	if b.Factor <= 0 {
		return d
	}

	rnd := b.rnd
	if rnd == nil {
		rnd = globalFloat64
	}

	return d + time.Duration(rnd()*b.Factor*float64(d))
}
