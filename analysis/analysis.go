// Package analysis renders per-episode reward series of one or more rollout
// runs into comparison plots.
package analysis

import (
	"fmt"
	"path"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/zeu5/marl-env/util"
)

// SmoothedRewards is the running mean of the episode rewards over the given
// window, used to make the curves readable.
func SmoothedRewards(rewards []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(rewards))
	sum := 0.0
	for i, r := range rewards {
		sum += r
		if i >= window {
			sum -= rewards[i-window]
		}
		n := min(i+1, window)
		out[i] = sum / float64(n)
	}
	return out
}

// PlotRewardCurves saves a PNG comparing the per-episode reward series of the
// named runs, one line per run.
func PlotRewardCurves(plotPath string, fileName string, names []string, series [][]float64) error {
	if err := util.EnsureDir(plotPath); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Episode rewards"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Total reward"
	for i := 0; i < len(names); i++ {
		rewards := series[i]
		points := make(plotter.XYs, len(rewards))
		for j, r := range rewards {
			points[j] = plotter.XY{
				X: float64(j),
				Y: r,
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			continue
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
		fmt.Printf("Final reward: %.3f for run: %s\n", rewards[len(rewards)-1], names[i])
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, fileName))
}
