package cmd

import (
	"fmt"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/spf13/cobra"
)

var (
	contactsPage     int
	contactsPageSize int
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contacts of the selected source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ctx := commandContext(cmd)

			page := contactsPage
			if page < 1 {
				page = internal.DefaultPage
			}
			pageSize := contactsPageSize
			if pageSize < 1 {
				pageSize = a.cfg.PageSize
			}

			var contacts internal.Page[internal.Contact]
			err := internal.ShowProgress(ctx, "Loading contacts...", func() error {
				var fetchErr error
				contacts, fetchErr = a.viewer.FetchContacts(ctx, page, pageSize)
				return fetchErr
			})
			if err != nil {
				return fmt.Errorf("failed to load contacts: %w", err)
			}

			displayContacts(cmd.OutOrStdout(), contacts, page, pageSize)
			return nil
		})
	},
}

func init() {
	contactsCmd.Flags().IntVar(&contactsPage, "page", internal.DefaultPage, "Page number")
	contactsCmd.Flags().IntVar(&contactsPageSize, "page-size", 0, "Contacts per page (default from config)")
	rootCmd.AddCommand(contactsCmd)
}
