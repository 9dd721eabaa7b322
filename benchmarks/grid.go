package benchmarks

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeu5/marl-env/analysis"
	_ "github.com/zeu5/marl-env/gridworld"
	"github.com/zeu5/marl-env/policies"
	"github.com/zeu5/marl-env/replicated"
	"github.com/zeu5/marl-env/rollout"
	"github.com/zeu5/marl-env/types"
)

// GridRollout replicates the gridworld into a multi-agent environment and
// compares a random and a softmax policy on it.
func GridRollout(episodes, horizon int, saveFile string, numAgents, height, width int) error {
	construct := replicated.MakeReplicated(replicated.FromName("grid"))

	names := make([]string, 0)
	series := make([][]float64, 0)
	runs := []struct {
		name   string
		policy func(env *replicated.Environment) policies.Policy
	}{
		{"Random", func(env *replicated.Environment) policies.Policy {
			return policies.NewRandom(env)
		}},
		{"SoftMax", func(env *replicated.Environment) policies.Policy {
			return policies.NewSoftMax(env, 0.3, 0.95)
		}},
	}

	for _, run := range runs {
		env, err := construct(types.Config{
			replicated.NumAgentsKey: numAgents,
			"height":                height,
			"width":                 width,
		})
		if err != nil {
			return fmt.Errorf("constructing %q env: %w", run.name, err)
		}
		runner := rollout.NewRunner(run.name, run.policy(env), env, &rollout.Config{
			Episodes:   episodes,
			Horizon:    horizon,
			RecordPath: saveFile,
		})
		if err := runner.Run(); err != nil {
			return err
		}
		names = append(names, run.name)
		series = append(series, analysis.SmoothedRewards(runner.EpisodeRewards(), 20))
	}
	return analysis.PlotRewardCurves(saveFile, "grid_rewards.png", names, series)
}

func GridCommand() *cobra.Command {
	var numAgents int
	var height int
	var width int

	cmd := &cobra.Command{
		Use: "grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return GridRollout(episodes, horizon, saveFile, numAgents, height, width)
		},
	}
	cmd.PersistentFlags().IntVar(&numAgents, "num-agents", 2, "Number of gridworld replicas")
	cmd.PersistentFlags().IntVar(&height, "height", 6, "Height of the grid")
	cmd.PersistentFlags().IntVar(&width, "width", 6, "Width of the grid")
	return cmd
}
