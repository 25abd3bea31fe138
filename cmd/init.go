package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/criticalinsight/sly/internal/config"
	"github.com/criticalinsight/sly/internal/workspace"
)

func initCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the .sly/ directory tree and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			created, err := workspace.Init(root)
			if err != nil {
				return err
			}
			if !created {
				fmt.Println("sly is already initialized in this workspace.")
				return nil
			}

			if !yes {
				if err := runInitForm(root); err != nil {
					return err
				}
			}

			fmt.Println("workspace initialized: .sly/ created, ignore entry added.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept defaults without prompting")
	return cmd
}

// runInitForm walks the operator through the handful of config choices that
// matter on day one, then rewrites .sly/config.toml with the answers.
func runInitForm(root string) error {
	cfgPath := filepath.Join(root, workspace.Dir, "config.toml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	projectName := cfg.ProjectName
	primaryModel := cfg.PrimaryModel
	autonomous := cfg.AutonomousMode
	maxLoops := strconv.Itoa(cfg.MaxAutonomousLoops)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&projectName),
			huh.NewInput().
				Title("Primary model").
				Description("claude-* routes to Anthropic, anything else to an OpenAI-compatible endpoint").
				Value(&primaryModel),
			huh.NewConfirm().
				Title("Autonomous mode").
				Description("let sessions re-enqueue their own think steps").
				Value(&autonomous),
			huh.NewInput().
				Title("Max autonomous loops").
				Validate(func(s string) error {
					_, err := strconv.Atoi(s)
					return err
				}).
				Value(&maxLoops),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.ProjectName = projectName
	cfg.PrimaryModel = primaryModel
	cfg.AutonomousMode = autonomous
	cfg.MaxAutonomousLoops, _ = strconv.Atoi(maxLoops)

	return config.Save(cfgPath, cfg)
}
