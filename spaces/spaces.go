// Package spaces provides minimal concrete value domains for observations and
// actions: a discrete set, a bounded box of floats, and an ordered tuple of
// member spaces.
package spaces

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeu5/marl-env/types"
)

// Discrete is the set of integers 0..N-1.
type Discrete struct {
	N int
}

var _ types.Space = &Discrete{}

func NewDiscrete(n int) *Discrete {
	return &Discrete{N: n}
}

func (d *Discrete) Sample(rng *rand.Rand) interface{} {
	return int(rng.Int63n(int64(d.N)))
}

func (d *Discrete) Contains(v interface{}) bool {
	i, ok := v.(int)
	return ok && i >= 0 && i < d.N
}

// Box is a bounded region of float vectors, one [low, high] interval per
// dimension.
type Box struct {
	Low  []float64
	High []float64
}

var _ types.Space = &Box{}

func NewBox(low, high []float64) *Box {
	return &Box{Low: low, High: high}
}

func (b *Box) Sample(rng *rand.Rand) interface{} {
	v := make([]float64, len(b.Low))
	for i := range v {
		u := distuv.Uniform{Min: b.Low[i], Max: b.High[i], Src: rng}
		v[i] = u.Rand()
	}
	return v
}

func (b *Box) Contains(v interface{}) bool {
	vec, ok := v.([]float64)
	if !ok || len(vec) != len(b.Low) {
		return false
	}
	for i, x := range vec {
		if x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

// Tuple is an ordered composite of member spaces. A tuple value is a slice
// with one entry per member, position correspondent.
type Tuple struct {
	Spaces []types.Space
}

var _ types.Space = &Tuple{}

func NewTuple(members ...types.Space) *Tuple {
	return &Tuple{Spaces: members}
}

func (t *Tuple) Sample(rng *rand.Rand) interface{} {
	v := make([]interface{}, len(t.Spaces))
	for i, s := range t.Spaces {
		v[i] = s.Sample(rng)
	}
	return v
}

func (t *Tuple) Contains(v interface{}) bool {
	vec, ok := v.([]interface{})
	if !ok || len(vec) != len(t.Spaces) {
		return false
	}
	for i, s := range t.Spaces {
		if !s.Contains(vec[i]) {
			return false
		}
	}
	return true
}
