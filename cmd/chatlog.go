package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/spf13/cobra"
)

// queryFlags are the chat log filters shared by chatlog and export
type queryFlags struct {
	time    string
	talker  string
	sender  string
	keyword string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.time, "time", "", "Time range, e.g. 2024-01-01 or 2024-01-01~2024-01-31")
	cmd.Flags().StringVar(&f.talker, "talker", "", "Session or contact ID to read messages of")
	cmd.Flags().StringVar(&f.sender, "sender", "", "Only messages from this sender")
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "Only messages containing this keyword")
}

func (f *queryFlags) query() internal.ChatLogQuery {
	return internal.ChatLogQuery{
		Time:    f.time,
		Talker:  f.talker,
		Sender:  f.sender,
		Keyword: f.keyword,
	}
}

var (
	chatlogFilters  queryFlags
	chatlogPage     int
	chatlogPageSize int
	chatlogRaw      bool
	chatlogJSON     bool
)

var chatlogCmd = &cobra.Command{
	Use:   "chatlog",
	Short: "Show chat messages of the selected source",
	Long: `Show chat messages of the selected source one page at a time.

With --raw the plaintext transcript is requested instead and parsed locally;
paging flags are ignored in that mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ctx := commandContext(cmd)
			q := chatlogFilters.query()

			pageSize := chatlogPageSize
			if pageSize < 1 {
				pageSize = a.cfg.PageSize
			}
			a.viewer.SetPage(chatlogPage, pageSize)

			var records []internal.ChatLogRecord
			var pagination *internal.Pagination
			err := internal.ShowProgress(ctx, "Loading messages...", func() error {
				if chatlogRaw {
					var fetchErr error
					records, fetchErr = a.viewer.FetchChatLogsRaw(ctx, q)
					internal.SortChatLogs(records)
					return fetchErr
				}
				page, fetchErr := a.viewer.FetchChatLogs(ctx, q)
				if fetchErr != nil {
					return fetchErr
				}
				records = page.Items
				p := a.viewer.Pagination()
				pagination = &p
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to load messages: %w", err)
			}

			if chatlogJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			displayChatLogs(cmd.OutOrStdout(), records, pagination)
			return nil
		})
	},
}

func init() {
	chatlogFilters.register(chatlogCmd)
	chatlogCmd.Flags().IntVar(&chatlogPage, "page", internal.DefaultPage, "Page number")
	chatlogCmd.Flags().IntVar(&chatlogPageSize, "page-size", 0, "Messages per page (default from config)")
	chatlogCmd.Flags().BoolVar(&chatlogRaw, "raw", false, "Request the plaintext transcript and parse it locally")
	chatlogCmd.Flags().BoolVar(&chatlogJSON, "json", false, "Print messages as JSON")
	rootCmd.AddCommand(chatlogCmd)
}
