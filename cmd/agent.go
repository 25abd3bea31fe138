package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/criticalinsight/sly/internal/bus"
	"github.com/criticalinsight/sly/internal/config"
	"github.com/criticalinsight/sly/internal/runtime"
)

func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session \"<prompt>\"",
		Short: "Start the runtime with an initial session prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd.Context(), args[0])
		},
	}
}

// runAgent builds the runtime for the current workspace and drains the
// event loop. A non-empty prompt seeds an InitiateSession impulse on the
// priority lane before the loop starts.
func runAgent(ctx context.Context, prompt string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.WorkspaceConfigPath(root))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := runtime.New(ctx, root, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	if prompt != "" {
		if err := rt.Submit(ctx, bus.Impulse{Kind: bus.ImpulseInitiateSession, Prompt: prompt}); err != nil {
			return err
		}
	}

	return rt.Run(ctx)
}
