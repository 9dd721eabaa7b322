package spaces

import (
	"testing"

	"golang.org/x/exp/rand"
)

func TestDiscrete(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := NewDiscrete(4)
	for i := 0; i < 100; i++ {
		v := d.Sample(rng)
		if !d.Contains(v) {
			t.Fatalf("sampled value %v outside the space", v)
		}
	}
	if d.Contains(4) || d.Contains(-1) || d.Contains("0") {
		t.Errorf("discrete membership is 0..N-1 ints only")
	}
}

func TestBox(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := NewBox([]float64{0, -1}, []float64{5, 1})
	for i := 0; i < 100; i++ {
		v := b.Sample(rng)
		if !b.Contains(v) {
			t.Fatalf("sampled value %v outside the box", v)
		}
	}
	if b.Contains([]float64{6, 0}) || b.Contains([]float64{1}) {
		t.Errorf("box membership must respect bounds and dimension")
	}
}

func TestTuple(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tp := NewTuple(NewDiscrete(3), NewBox([]float64{0}, []float64{1}))
	v := tp.Sample(rng)
	if !tp.Contains(v) {
		t.Fatalf("sampled tuple %v outside the space", v)
	}
	members, ok := v.([]interface{})
	if !ok || len(members) != 2 {
		t.Fatalf("tuple sample must have one entry per member, got %v", v)
	}
	if tp.Contains([]interface{}{0}) {
		t.Errorf("tuple membership must respect arity")
	}
}
