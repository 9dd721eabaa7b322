package benchmarks

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeu5/marl-env/analysis"
	_ "github.com/zeu5/marl-env/gridworld"
	"github.com/zeu5/marl-env/grouping"
	"github.com/zeu5/marl-env/policies"
	"github.com/zeu5/marl-env/replicated"
	"github.com/zeu5/marl-env/rollout"
	"github.com/zeu5/marl-env/types"
)

// GroupedGridRollout runs a random policy over replicated gridworlds whose
// replicas are merged into two logical team agents.
func GroupedGridRollout(episodes, horizon int, saveFile string, height, width int) error {
	construct := replicated.MakeReplicated(replicated.FromName("grid"))
	env, err := construct(types.Config{
		replicated.NumAgentsKey: 4,
		"height":                height,
		"width":                 width,
	})
	if err != nil {
		return fmt.Errorf("constructing grid env: %w", err)
	}

	grouped, err := grouping.NewGroupedEnvironment(env, grouping.GroupSpec{
		"team0": {types.ReplicaID(0), types.ReplicaID(1)},
		"team1": {types.ReplicaID(2), types.ReplicaID(3)},
	})
	if err != nil {
		return fmt.Errorf("grouping grid env: %w", err)
	}

	runner := rollout.NewRunner("Grouped-Random", policies.NewRandom(grouped), grouped, &rollout.Config{
		Episodes:   episodes,
		Horizon:    horizon,
		RecordPath: saveFile,
	})
	if err := runner.Run(); err != nil {
		return err
	}
	return analysis.PlotRewardCurves(saveFile, "grouped_rewards.png",
		[]string{"Grouped-Random"},
		[][]float64{analysis.SmoothedRewards(runner.EpisodeRewards(), 20)})
}

func GroupedGridCommand() *cobra.Command {
	var height int
	var width int

	cmd := &cobra.Command{
		Use: "grouped",
		RunE: func(cmd *cobra.Command, args []string) error {
			return GroupedGridRollout(episodes, horizon, saveFile, height, width)
		},
	}
	cmd.PersistentFlags().IntVar(&height, "height", 6, "Height of the grid")
	cmd.PersistentFlags().IntVar(&width, "width", 6, "Width of the grid")
	return cmd
}
