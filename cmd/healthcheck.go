package cmd

import (
	"fmt"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/spf13/cobra"
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if chatlog-viewer can reach the chatlog service",
	Long: `Check the health of chatlog-viewer by verifying:
  • Configuration loading
  • Viewer state storage
  • Chatlog service reachability
  • Selected source connectivity

Pass --verbose for details on each step.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := commandContext(cmd)

		fmt.Fprintln(out, sectionStyle.Render("🔍 Chatlog Viewer Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load configuration:"), err)
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			if cfg.Path != "" {
				fmt.Fprintf(out, "   File: %s\n", cfg.Path)
			} else {
				fmt.Fprintln(out, "   File: none (defaults and environment)")
			}
			fmt.Fprintf(out, "   Server: %s\n", cfg.Server)
			fmt.Fprintf(out, "   Timeout: %s\n", cfg.Timeout)
			fmt.Fprintf(out, "   Page size: %d\n", cfg.PageSize)
		}
		fmt.Fprintln(out)

		// Step 2: State store
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening viewer state..."))
		a, err := newApp()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open viewer state:"), err)
			return err
		}
		defer a.Close()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ State backend %q ready", cfg.StateBackend)))
		if verbose {
			fmt.Fprintf(out, "   Directory: %s\n", cfg.StateDir)
		}
		fmt.Fprintln(out)

		// Step 3: Upstream service
		fmt.Fprintln(out, infoStyle.Render("Step 3: Contacting chatlog service..."))
		sources, err := a.viewer.FetchSources(ctx)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Chatlog service unreachable:"), err)
			return err
		}
		if len(sources) == 0 {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Service reachable but reports no sources"))
		} else {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Service reachable, %d source(s)", len(sources))))
			if verbose {
				for i, src := range sources {
					if i < 5 {
						fmt.Fprintf(out, "   [%d] %s\n", i+1, src.Label())
					}
				}
				if len(sources) > 5 {
					fmt.Fprintf(out, "   ... and %d more\n", len(sources)-5)
				}
			}
		}
		fmt.Fprintln(out)

		// Step 4: Selected source
		fmt.Fprintln(out, infoStyle.Render("Step 4: Checking selected source..."))
		current := a.viewer.CurrentSource()
		if current == nil {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No source selected"))
			fmt.Fprintln(out, idStyle.Render("   Select one with `chatlog-viewer sources use <id>`"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render("Summary"))
			fmt.Fprintln(out, warningStyle.Render("⚠️  Service is reachable; select a source to browse data"))
			return nil
		}

		result, err := a.viewer.TestSource(ctx, "")
		switch {
		case err != nil:
			fmt.Fprintln(out, errorStyle.Render("❌ Source test failed:"), err)
			return err
		case !result.Success:
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ Source %s is not readable", current.Label())))
			if result.Message != "" {
				fmt.Fprintf(out, "   %s\n", result.Message)
			}
			return fmt.Errorf("source %s failed its connection test", current.SourceID)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Source %s is readable", current.Label())))
		if verbose && result.Message != "" {
			fmt.Fprintf(out, "   %s\n", result.Message)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("Summary"))
		fmt.Fprintln(out, successStyle.Render("✅ chatlog-viewer is ready"))
		internal.LogDebug("Healthcheck passed for source %s", current.SourceID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
