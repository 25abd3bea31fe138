package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/criticalinsight/sly/internal/workspace"
)

const outboxPollInterval = 2 * time.Second

func supervisorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supervisor",
		Short: "Run the local supervisor: drain the outbox and print events",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			release, err := workspace.AcquireSupervisorLock(root)
			if err != nil {
				return err
			}
			defer release()

			fmt.Println("supervisor online, watching .sly/outbox/")
			ticker := time.NewTicker(outboxPollInterval)
			defer ticker.Stop()

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
					records, err := workspace.ReadOutbox(root)
					if err != nil {
						fmt.Fprintf(os.Stderr, "outbox read failed: %v\n", err)
						continue
					}
					for _, r := range records {
						printRecord(r.Op, r.Data, r.Ts)
					}
				}
			}
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install the supervisor as a system service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("service installation is handled by the deployment tooling, not this binary")
		},
	})
	return cmd
}

func printRecord(op string, data any, ts int64) {
	payload, _ := json.Marshal(data)
	fmt.Printf("%s  %s  %s\n",
		time.UnixMilli(ts).Format(time.RFC3339),
		runewidth.FillRight(runewidth.Truncate(op, 24, "…"), 24),
		runewidth.Truncate(string(payload), 96, "…"))
}
