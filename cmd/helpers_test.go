package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/iksnae/chatlog-viewer/internal/config"
	"github.com/iksnae/chatlog-viewer/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// isolate keeps user config out of a command test: HOME and the working
// directory are fresh temp dirs and the CHATLOG_* variables are cleared
func isolate(t *testing.T) {
	t.Helper()
	testutil.IsolateHome(t)
	for _, env := range []string{
		config.EnvServer, config.EnvTimeout, config.EnvPageSize, config.EnvStateBackend,
		config.EnvStateDir, config.EnvMediaBase, config.EnvTimezone,
	} {
		t.Setenv(env, "")
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// resetFlags restores every flag variable to its default. Cobra keeps flag
// values between Execute calls on the same command tree.
func resetFlags() {
	verbose, configPath, serverURL, stateBackend, stateDir = false, "", "", "", ""
	sourcesJSON = false
	parseFormat = ""
	chatlogFilters, chatlogPage, chatlogPageSize, chatlogRaw, chatlogJSON = queryFlags{}, internal.DefaultPage, 0, false, false
	contactsPage, contactsPageSize = internal.DefaultPage, 0
	exportFilters, exportFrom, exportFormat, exportOut = queryFlags{}, exportFromCSV, "jsonl", ""
	exportSessions, exportLimit = false, 0

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("false")
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
	internal.SetVerbose(false)
}

// run executes the root command with args and returns what it wrote to
// stdout
func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// upstreamArgs points a command at the fake service with file backed state
func upstreamArgs(u *testutil.Upstream, stateDir string, args ...string) []string {
	return append(args, "--server", u.URL, "--state-backend", internal.StateBackendYAML, "--state-dir", stateDir)
}
