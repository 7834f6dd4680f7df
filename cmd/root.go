package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/config"
	"github.com/iksnae/chat2md/internal/converter"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose    bool
	cfgFile    string
	noCache    bool
	clearCache bool
	// configLoaded is set once a config file has been read
	configLoaded bool
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chat2md",
	Short: "Convert ChatGPT and Claude exports to Markdown",
	Long: `A CLI tool to convert exported chat histories from ChatGPT and Claude
into Markdown or MDX documents, packaged as a zip archive.

The export format is detected automatically from the conversations.json file
found in either product's data export.

Features:
  • List the conversations of an export with metadata
  • View individual conversations rendered in the terminal
  • Convert whole exports to Markdown/MDX zip archives
  • Watch a directory and convert exports as they arrive
  • Cached parsing for fast repeated access

Quick Start:
  chat2md list conversations.json              # List all conversations
  chat2md show conversations.json <id>         # View a specific conversation
  chat2md convert conversations.json -o out    # Convert to a zip of Markdown files

For detailed usage, see: https://github.com/iksnae/chat2md`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.config/chat2md/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Parse exports without reading or writing the cache")
	rootCmd.PersistentFlags().BoolVar(&clearCache, "clear-cache", false, "Clear the cache before running")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// defaultConfigFile returns $HOME/.config/chat2md/config.toml
func defaultConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chat2md", "config.toml"), nil
}

// defaultCacheDir returns the per-user cache directory for parsed exports
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "chat2md-cache")
	}
	return filepath.Join(dir, "chat2md")
}

// initConfig reads in the config file, .env and CHAT2MD_* variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		internal.LogWarn("Failed to load .env file: %v", err)
	}

	config.SetDefaults(viper.GetViper(), config.NewDefaultConfig(defaultCacheDir()))
	viper.SetEnvPrefix("CHAT2MD")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		path, err := defaultConfigFile()
		if err != nil {
			internal.LogDebug("No config directory: %v", err)
			return
		}
		viper.SetConfigFile(path)
		if _, err := os.Stat(path); err != nil {
			internal.LogDebug("No config file at %s, using defaults", path)
			return
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		internal.LogWarn("Failed to read config file %s: %v", viper.ConfigFileUsed(), err)
		return
	}
	configLoaded = true
	internal.LogDebug("Using config file: %s", viper.ConfigFileUsed())
}

// loadConfig returns the effective configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openCache returns the parse cache, or nil when caching is disabled.
// --clear-cache empties it first.
func openCache(cfg *config.Config) *internal.CacheManager {
	if noCache {
		return nil
	}
	cacheManager := internal.NewCacheManager(cfg.CacheDir)
	if clearCache {
		if err := cacheManager.ClearCache(); err != nil {
			internal.LogWarn("Failed to clear cache: %v", err)
		} else {
			internal.LogInfo("Cache cleared")
		}
	}
	return cacheManager
}

// loadExport parses an export through the cache
func loadExport(cfg *config.Config, cacheManager *internal.CacheManager, path string) (*converter.ParseResult, error) {
	result, err := converter.New(cfg.Workers).ParseFileCached(path, cacheManager)
	if err != nil {
		return nil, err
	}
	for _, skipped := range result.Skipped {
		internal.PrintWarning(skipped.Error())
	}
	return result, nil
}

func closeCache(cacheManager *internal.CacheManager) {
	if cacheManager == nil {
		return
	}
	if err := cacheManager.Close(); err != nil {
		internal.LogDebug("Failed to close cache: %v", err)
	}
}
