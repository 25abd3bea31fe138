package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/criticalinsight/sly/internal/workspace"
)

func factCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fact <op> <json>",
		Short: "Queue a single event for the supervisor and exit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := args[0]

			var data any
			if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
				return fmt.Errorf("invalid event JSON: %w", err)
			}

			root, err := os.Getwd()
			if err != nil {
				return err
			}

			path, err := workspace.WriteOutbox(root, op, data)
			if err != nil {
				return err
			}
			fmt.Printf("queued %s\n", path)
			return nil
		},
	}
}
