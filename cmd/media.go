package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/spf13/cobra"
)

var mediaCmd = &cobra.Command{
	Use:   "media <kind> <id>",
	Short: "Print the URL of a media item",
	Long: fmt.Sprintf(`Print the URL the chatlog service serves a media item from.
Kind is one of: %s.`, strings.Join(mediaKindNames(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := internal.ParseMediaKind(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), internal.MediaURL(cfg.MediaBaseURL(), kind, args[1]))
		return nil
	},
}

func mediaKindNames() []string {
	names := make([]string, len(internal.MediaKinds))
	for i, k := range internal.MediaKinds {
		names[i] = string(k)
	}
	return names
}

func init() {
	rootCmd.AddCommand(mediaCmd)
}
