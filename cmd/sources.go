package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/spf13/cobra"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources of the chatlog service",
	Long: `List the data sources (accounts) the chatlog service knows about.
The selected source is marked with an asterisk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ctx := commandContext(cmd)

			var sources []internal.Source
			err := internal.ShowProgress(ctx, "Loading sources...", func() error {
				var fetchErr error
				sources, fetchErr = a.viewer.FetchSources(ctx)
				return fetchErr
			})
			if err != nil {
				return fmt.Errorf("failed to load sources: %w", err)
			}

			if sourcesJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sources)
			}
			displaySources(cmd.OutOrStdout(), sources, a.viewer.CurrentSource())
			return nil
		})
	},
}

var sourcesUseCmd = &cobra.Command{
	Use:   "use <source-id>",
	Short: "Select the active source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			src, err := a.viewer.SelectSourceByID(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to select source: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Using source %s\n", successStyle.Render("✓"), src.Label())
			return nil
		})
	},
}

var sourcesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the selected source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.viewer.SelectSource(nil); err != nil {
				return fmt.Errorf("failed to clear source: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Source selection cleared\n", successStyle.Render("✓"))
			return nil
		})
	},
}

var sourcesTestCmd = &cobra.Command{
	Use:   "test [source-id]",
	Short: "Test the connection of a source",
	Long: `Ask the chatlog service whether a source can be read. Without an
argument the selected source is tested.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}

			result, err := a.viewer.TestSource(commandContext(cmd), id)
			if err != nil {
				return fmt.Errorf("source test failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if result.Success {
				fmt.Fprintf(out, "%s Source is reachable\n", successStyle.Render("✓"))
			} else {
				fmt.Fprintf(out, "%s Source test failed\n", errorStyle.Render("✗"))
			}
			if result.Message != "" {
				fmt.Fprintf(out, "  %s\n", infoStyle.Render(result.Message))
			}
			if !result.Success {
				return fmt.Errorf("source test reported failure")
			}
			return nil
		})
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "Print sources as JSON")
	sourcesCmd.AddCommand(sourcesUseCmd, sourcesClearCmd, sourcesTestCmd)
	rootCmd.AddCommand(sourcesCmd)
}
