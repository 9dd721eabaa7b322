package types

import "golang.org/x/exp/rand"

// Space describes the domain of observations or actions of one agent. The
// core only ever samples from a space or checks membership; concrete layouts
// live in the spaces package.
type Space interface {
	Sample(rng *rand.Rand) interface{}
	Contains(v interface{}) bool
}
