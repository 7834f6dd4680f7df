package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/iksnae/chat2md/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// isolateEnv points the home, config and cache directories at a temp dir
// and returns the cache directory.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := testutil.CreateTempDir(t)
	cacheDir := testutil.CreateTempDir(t)
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", home)
	t.Setenv("CHAT2MD_CACHE_DIR", cacheDir)
	return cacheDir
}

// executeCommand runs the root command with args and returns what it wrote
// to its output. The environment is isolated unless the test already did so.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if os.Getenv("CHAT2MD_CACHE_DIR") == "" {
		isolateEnv(t)
	}

	resetFlags(rootCmd)
	configLoaded = false
	// values read from an earlier --config file stay in the global viper
	viper.SetConfigType("toml")
	_ = viper.ReadConfig(strings.NewReader(""))

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// resetFlags restores every flag of c and its subcommands to its default,
// since parsed values survive between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
