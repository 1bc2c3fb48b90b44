package router

import "math"

// Cost is an edge-hop cost accumulator. A concrete type rather than a
// bare float64 so "infinite" (impossible hop) has one canonical
// representation and addition/comparison read clearly at call sites.
type Cost struct {
	val float64
}

// ZeroCost is the cost of not moving at all (the start of a route).
func ZeroCost() Cost { return Cost{} }

// InfCost marks a hop as impossible (spec.md §4.D "oneWay==2 / component
// mismatch / noSelfHops short-circuit to infinite cost").
func InfCost() Cost { return Cost{val: math.Inf(1)} }

// NewCost builds a Cost from a float64 value.
func NewCost(v float64) Cost { return Cost{val: v} }

// Value returns the underlying float64.
func (c Cost) Value() float64 { return c.val }

// IsInf reports whether this cost is infinite (impossible).
func (c Cost) IsInf() bool { return math.IsInf(c.val, 1) }

// Add returns c + o. Adding to an infinite cost stays infinite.
func (c Cost) Add(o Cost) Cost { return Cost{val: c.val + o.val} }

// Less reports whether c is strictly cheaper than o.
func (c Cost) Less(o Cost) bool { return c.val < o.val }
