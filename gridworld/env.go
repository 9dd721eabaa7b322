// Package gridworld is a small goal-seeking grid used to exercise the
// replicated adapter. The actor starts at the origin and walks a bounded grid
// towards a goal cell; reaching it ends the episode.
package gridworld

import (
	"fmt"

	"github.com/zeu5/marl-env/replicated"
	"github.com/zeu5/marl-env/spaces"
	"github.com/zeu5/marl-env/types"
)

const (
	MoveNothing = iota
	MoveUp
	MoveDown
	MoveLeft
	MoveRight
)

const (
	stepPenalty = -0.01
	goalReward  = 1.0
)

type Position struct {
	I int
	J int
}

func (p Position) Eq(other Position) bool {
	return p.I == other.I && p.J == other.J
}

type Environment struct {
	Height int
	Width  int
	Goal   Position
	CurPos Position

	obsSpace *spaces.Box
	actSpace *spaces.Discrete
}

var _ replicated.SingleAgentEnvironment = &Environment{}
var _ replicated.Spaced = &Environment{}
var _ replicated.Renderer = &Environment{}

func NewEnvironment(height, width int) *Environment {
	return &Environment{
		Height: height,
		Width:  width,
		Goal:   Position{I: height - 1, J: width - 1},
		obsSpace: spaces.NewBox(
			[]float64{0, 0},
			[]float64{float64(height - 1), float64(width - 1)},
		),
		actSpace: spaces.NewDiscrete(5),
	}
}

// FromConfig builds a gridworld from a construction config with optional
// "height" and "width" options.
func FromConfig(cfg types.Config) (replicated.SingleAgentEnvironment, error) {
	height, rest := cfg.PopInt("height", 10)
	width, _ := rest.PopInt("width", 10)
	if height < 2 || width < 2 {
		return nil, fmt.Errorf("grid of %dx%d is too small", height, width)
	}
	return NewEnvironment(height, width), nil
}

func init() {
	replicated.Register("grid", FromConfig)
}

func (g *Environment) ObservationSpace() types.Space {
	return g.obsSpace
}

func (g *Environment) ActionSpace() types.Space {
	return g.actSpace
}

func (g *Environment) observe() types.Observation {
	return []float64{float64(g.CurPos.I), float64(g.CurPos.J)}
}

func (g *Environment) Reset() (types.Observation, error) {
	g.CurPos = Position{0, 0}
	return g.observe(), nil
}

func (g *Environment) Step(action types.Action) (types.Observation, float64, bool, types.Info, error) {
	move, ok := action.(int)
	if !ok || !g.actSpace.Contains(move) {
		return nil, 0, false, nil, fmt.Errorf("gridworld step: action %v is not a movement", action)
	}
	newPos := g.CurPos
	switch move {
	case MoveNothing:
	case MoveUp:
		newPos.I = min(g.Height-1, g.CurPos.I+1)
	case MoveDown:
		newPos.I = max(0, g.CurPos.I-1)
	case MoveLeft:
		newPos.J = max(0, g.CurPos.J-1)
	case MoveRight:
		newPos.J = min(g.Width-1, g.CurPos.J+1)
	}
	g.CurPos = newPos

	if g.CurPos.Eq(g.Goal) {
		return g.observe(), goalReward, true, types.Info{"at_goal": true}, nil
	}
	return g.observe(), stepPenalty, false, types.Info{}, nil
}

func (g *Environment) Render(mode string) {
	if mode != "ansi" {
		return
	}
	fmt.Printf("gridworld %dx%d at (%d, %d)\n", g.Height, g.Width, g.CurPos.I, g.CurPos.J)
}
