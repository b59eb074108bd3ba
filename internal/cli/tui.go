package cli

import (
	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/tui"
)

func newTUICommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, rt)
		},
	}
}

func runTUI(cmd *cobra.Command, rt *state) error {
	return tui.Run(cmd.Context(), rt.app)
}
