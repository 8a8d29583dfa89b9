package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the chunks, shared modules and unused exports of the module graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			jobs, err := cmd.Flags().GetInt("jobs")
			if err != nil {
				return err
			}
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}

			watch, err := cmd.Flags().GetBool("watch")
			if err != nil {
				return err
			}

			opts := app.PlanOptions{ConfigPath: path, Parallelism: jobs}
			write := func(plan *domain.Plan) error {
				if asJSON {
					return app.WritePlanJSON(cmd.OutOrStdout(), plan)
				}
				return app.WritePlanText(cmd.OutOrStdout(), plan)
			}

			if watch {
				return c.app.Watch(cmd.Context(), opts, write)
			}
			plan, err := c.app.Plan(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return write(plan)
		},
	}

	cmd.Flags().Bool("json", false, "Print the plan as JSON")
	cmd.Flags().BoolP("watch", "w", false, "Re-plan whenever the configuration file changes")
	cmd.Flags().IntP("jobs", "j", 0, "Number of chunks analyzed in parallel (0 means one per CPU)")
	return cmd
}
