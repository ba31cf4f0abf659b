// Package commands wires the topicbus CLI.
package commands

import (
	"TopicBus/internal/shared/config"
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// scenario is the body of a subcommand, run against a fresh runtime.
type scenario func(ctx context.Context, rt *runtime) error

// NewRootCommand builds the topicbus command tree. Every subcommand runs on a
// fresh bus built from cfg.
func NewRootCommand(cfg *config.Config, baseLogger *zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "topicbus",
		Short:         "In-process topic-based publish/subscribe demos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	run := func(ctx context.Context, fn scenario) error {
		return withRuntime(ctx, cfg, baseLogger, fn)
	}
	root.AddCommand(
		newSensorsCommand(cfg, run),
		newNewsCommand(run),
		newDemoCommand(cfg, run),
	)
	return root
}

// withRuntime runs fn and always releases the runtime, whether fn fails or not.
func withRuntime(ctx context.Context, cfg *config.Config, baseLogger *zerolog.Logger, fn scenario) (err error) {
	rt, err := newRuntime(cfg, baseLogger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.close(context.WithoutCancel(ctx)); closeErr != nil {
			rt.log.Error().Err(closeErr).Msg("Failed to stop metrics server")
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(ctx, rt)
}

type runner func(ctx context.Context, fn scenario) error

func addSimulationFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().Int("rounds", cfg.Simulation.Rounds, "Readings taken by each sensor")
	cmd.Flags().Duration("interval", cfg.Simulation.Interval, "Pause between rounds")
}

func simulationFlags(cmd *cobra.Command) (int, time.Duration, error) {
	rounds, _ := cmd.Flags().GetInt("rounds")
	interval, _ := cmd.Flags().GetDuration("interval")
	if rounds < 0 {
		return 0, 0, errors.New("--rounds must not be negative")
	}
	if interval < 0 {
		return 0, 0, errors.New("--interval must not be negative")
	}
	return rounds, interval, nil
}

func newSensorsCommand(cfg *config.Config, run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensors",
		Short: "Simulate sensors publishing readings to three displays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rounds, interval, err := simulationFlags(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), func(ctx context.Context, rt *runtime) error {
				return runSensorScenario(ctx, rt, cmd.OutOrStdout(), rounds, interval)
			})
		},
	}
	addSimulationFlags(cmd, cfg)
	return cmd
}

func newNewsCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Run the news agencies scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(ctx context.Context, rt *runtime) error {
				return runNewsScenario(ctx, rt, cmd.OutOrStdout())
			})
		},
	}
}

func newDemoCommand(cfg *config.Config, run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the sensors and news scenarios on one bus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rounds, interval, err := simulationFlags(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), func(ctx context.Context, rt *runtime) error {
				if err := runSensorScenario(ctx, rt, cmd.OutOrStdout(), rounds, interval); err != nil {
					return err
				}
				return runNewsScenario(ctx, rt, cmd.OutOrStdout())
			})
		},
	}
	addSimulationFlags(cmd, cfg)
	return cmd
}
