// Package risk maps scores onto discrete risk tiers.
package risk

import (
	"fmt"
	"math"
)

// Tier orders risk from none to strong.
type Tier int

const (
	TierNone Tier = iota
	TierMinimal
	TierEmerging
	TierStrong
)

var tierNames = [...]string{"none", "minimal", "emerging", "strong"}

func (t Tier) String() string {
	if t < TierNone || t > TierStrong {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Rung is one step of a Ladder: values at or above Floor get Tier and
// Label. Message is optional caller-facing detail.
type Rung struct {
	Floor   float64
	Tier    Tier
	Label   string
	Message string
}

// Ladder classifies a value by the first rung whose floor it reaches.
// Rungs are held in descending floor and tier order, so a higher value
// never yields a lower tier.
type Ladder struct {
	rungs []Rung
	below Rung
}

// NewLadder builds a ladder from rungs in descending floor order; below
// applies to values under every floor. It panics on rungs out of order,
// since ladders are package-level tables.
func NewLadder(below Rung, rungs ...Rung) Ladder {
	prev := Rung{Floor: math.Inf(1), Tier: TierStrong + 1}
	for _, r := range rungs {
		if !(r.Floor < prev.Floor) || r.Tier > prev.Tier || r.Tier < below.Tier {
			panic(fmt.Sprintf("risk: rung %q out of order", r.Label))
		}
		prev = r
	}
	below.Floor = math.Inf(-1)
	return Ladder{rungs: rungs, below: below}
}

// Classify returns the rung for v. NaN falls below every floor.
func (l Ladder) Classify(v float64) Rung {
	for _, r := range l.rungs {
		if v >= r.Floor {
			return r
		}
	}
	return l.below
}

// Rungs lists the ladder from the highest floor down, ending with the
// catch-all rung.
func (l Ladder) Rungs() []Rung {
	return append(append([]Rung(nil), l.rungs...), l.below)
}

// above returns the smallest float strictly greater than v, for rules
// written as v > x.
func above(v float64) float64 {
	return math.Nextafter(v, math.Inf(1))
}
