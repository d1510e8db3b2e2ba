// Package rng is the single source of randomness for the engine. Every roll
// goes through an RNG so a seed reproduces an entire run.
package rng

import (
	"math"
	"math/rand"
	"sync"
)

// RNG wraps math/rand.Rand with position tracking.
// Position increments with every call. Safe for concurrent use.
type RNG struct {
	mu   sync.Mutex
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Between returns a uniform integer in [min, max], inclusive of both bounds.
// Swapped bounds are normalised.
func (r *RNG) Between(min, max int) int {
	if max < min {
		min, max = max, min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos++
	return min + r.src.Intn(max-min+1)
}

// BetweenExcluding is Between resampled until the result differs from exclude.
// A range holding only exclude returns exclude.
func (r *RNG) BetweenExcluding(min, max, exclude int) int {
	if min == max {
		return min
	}
	for {
		if v := r.Between(min, max); v != exclude {
			return v
		}
	}
}

// Decimal returns a uniform float in [min, max] truncated to the given number
// of decimal places.
func (r *RNG) Decimal(min, max float64, places int) float64 {
	if max < min {
		min, max = max, min
	}
	r.mu.Lock()
	f := r.src.Float64()
	r.pos++
	r.mu.Unlock()

	v := min + f*(max-min)
	factor := math.Pow(10, float64(places))
	return math.Trunc(v*factor) / factor
}

// Bool is the zero-argument form: true when a unit roll is ≥ 0.5.
func (r *RNG) Bool() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos++
	return r.src.Float64() >= 0.5
}

// Percent returns a roll in [0, 99]. Callers compare it against a
// threshold, usually biased by luck.
func (r *RNG) Percent() int {
	return r.Between(0, 99)
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.Between(0, total-1)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Choice picks one element of items using Between. items must be non-empty.
func Choice[T any](r *RNG, items []T) T {
	return items[r.Between(0, len(items)-1)]
}
