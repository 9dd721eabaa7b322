// Package rollout drives a multi-agent environment with a policy for a fixed
// number of episodes, validating the contract at the boundary and collecting
// traces and per-episode rewards.
package rollout

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/zeu5/marl-env/policies"
	"github.com/zeu5/marl-env/types"
	"github.com/zeu5/marl-env/util"
)

type Config struct {
	Episodes int
	Horizon  int
	// RecordPath, when set, receives one JSONL record per episode.
	RecordPath string
	// Quiet suppresses the progress line.
	Quiet bool
}

type episodeRecord struct {
	Episode int     `json:"episode"`
	Steps   int     `json:"steps"`
	Reward  float64 `json:"reward"`
}

// Runner executes episodes of one environment under one policy.
type Runner struct {
	Name string

	policy policies.Policy
	env    types.MultiAgentEnvironment
	config *Config

	traces  []*Trace
	rewards []float64
}

func NewRunner(name string, policy policies.Policy, env types.MultiAgentEnvironment, config *Config) *Runner {
	return &Runner{
		Name:    name,
		policy:  policy,
		env:     env,
		config:  config,
		traces:  make([]*Trace, 0, config.Episodes),
		rewards: make([]float64, 0, config.Episodes),
	}
}

// Run executes the configured number of episodes. The first contract
// violation or environment error aborts the run.
func (r *Runner) Run() error {
	for episode := 0; episode < r.config.Episodes; episode++ {
		trace, err := r.runEpisode()
		if err != nil {
			return fmt.Errorf("episode %d: %w", episode, err)
		}
		r.traces = append(r.traces, trace)
		r.rewards = append(r.rewards, trace.Reward())

		if r.config.RecordPath != "" {
			if err := r.record(episode, trace); err != nil {
				return err
			}
		}
		if !r.config.Quiet {
			fmt.Printf("\rExp:%s, Eps:%d/%d, Reward:%8.3f", r.Name, episode+1, r.config.Episodes, trace.Reward())
		}
	}
	if !r.config.Quiet {
		fmt.Println()
	}
	return nil
}

func (r *Runner) runEpisode() (*Trace, error) {
	obs, err := r.env.Reset()
	if err != nil {
		return nil, err
	}
	trace := NewTrace()

	for step := 0; step < r.config.Horizon; step++ {
		actions, ok := r.policy.NextActions(step, obs)
		if !ok {
			break
		}
		res, err := r.env.Step(actions)
		if err != nil {
			return nil, err
		}
		if err := types.ValidateStepResult(res); err != nil {
			return nil, err
		}
		r.policy.Update(step, obs, actions, res)
		trace.Append(obs, actions, res)

		if res.Dones[types.DoneAll] {
			break
		}
		obs = res.Observations
	}
	return trace, nil
}

func (r *Runner) record(episode int, trace *Trace) error {
	record := episodeRecord{
		Episode: episode,
		Steps:   trace.Len(),
		Reward:  trace.Reward(),
	}
	bs, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return util.AppendToFile(path.Join(r.config.RecordPath, r.Name+".jsonl"), string(bs))
}

// EpisodeRewards is the total reward of each completed episode, in order.
func (r *Runner) EpisodeRewards() []float64 {
	return r.rewards
}

// Traces of the completed episodes, in order.
func (r *Runner) Traces() []*Trace {
	return r.traces
}
