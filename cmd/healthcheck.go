package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/converter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck [export.json]",
	Short: "Check that chat2md is configured and can read exports",
	Long: `Check the health of chat2md by verifying:
  • Configuration loading
  • Parse cache accessibility
  • Optionally, that an export file can be detected and parsed

This command is useful for debugging configuration and export issues.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := false

		fmt.Fprintln(out, sectionStyle.Render("🔍 chat2md Health Check"))
		fmt.Fprintln(out)

		// Step 1: configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Configuration is invalid:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if configLoaded {
			fmt.Fprintln(out, successStyle.Render("✅ Config file loaded"))
			if verbose {
				fmt.Fprintf(out, "   File: %s\n", viper.ConfigFileUsed())
			}
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No config file, using defaults (run 'chat2md init' to create one)"))
		}
		if verbose {
			fmt.Fprintf(out, "   Format: %s, frontmatter: %v, separate files: %v, timestamps: %v, timezone: %s\n",
				cfg.Format, cfg.IncludeFrontmatter, cfg.SeparateFiles, cfg.AddTimestamps, cfg.TimeZone)
			fmt.Fprintf(out, "   Output directory: %s\n", cfg.OutputDir)
		}
		fmt.Fprintln(out)

		// Step 2: cache
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking parse cache..."))
		if noCache {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Cache disabled (--no-cache)"))
		} else if !checkCache(out, internal.NewCacheManager(cfg.CacheDir)) {
			failed = true
		}
		fmt.Fprintln(out)

		// Step 3: export
		if len(args) == 1 {
			fmt.Fprintln(out, infoStyle.Render("Step 3: Parsing export..."))
			result, err := converter.New(cfg.Workers).ParseFile(args[0])
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render("❌ Failed to parse export:"), err)
				failed = true
			} else {
				fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Detected %s export with %d conversation(s)", result.Source, len(result.Conversations))))
				if len(result.Skipped) > 0 {
					fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %d malformed conversation(s) would be skipped", len(result.Skipped))))
					if verbose {
						for _, skipped := range result.Skipped {
							fmt.Fprintf(out, "   • %v\n", skipped)
						}
					}
				}
			}
			fmt.Fprintln(out)
		}

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if failed {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed")
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

// checkCache opens the cache database and reports what it holds
func checkCache(out io.Writer, cacheManager *internal.CacheManager) bool {
	defer closeCache(cacheManager)

	exports, err := cacheManager.ListExports()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Cache is not accessible:"), err)
		return false
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Cache accessible (%d export(s) cached)", len(exports))))
	if verbose {
		fmt.Fprintf(out, "   Database: %s\n", cacheManager.GetDatabasePath())
		for i, meta := range exports {
			if i == 5 {
				fmt.Fprintf(out, "   ... and %d more\n", len(exports)-5)
				break
			}
			fmt.Fprintf(out, "   [%d] %s (%s, cached %s)\n", i+1, meta.ExportPath, meta.Source, meta.CachedAt.Format("2006-01-02 15:04"))
		}
	}
	return true
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
