package cmd

import (
	"fmt"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions of the selected source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ctx := commandContext(cmd)

			var sessions []internal.SessionRecord
			err := internal.ShowProgress(ctx, "Loading sessions...", func() error {
				var fetchErr error
				sessions, fetchErr = a.viewer.FetchSessions(ctx)
				return fetchErr
			})
			if err != nil {
				return fmt.Errorf("failed to load sessions: %w", err)
			}

			displaySessions(cmd.OutOrStdout(), sessions)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
