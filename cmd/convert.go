package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/converter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	convertTimeout time.Duration
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <export.json>",
	Short: "Convert an export to a zip of Markdown files",
	Long: `Convert every conversation of a ChatGPT or Claude export to Markdown (md)
or MDX and package the documents into chat-export-<source>.zip.

Flags override the values from the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportPath := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := cfg.ConversionOptions()
		if err != nil {
			return err
		}
		cacheManager := openCache(cfg)
		defer closeCache(cacheManager)

		ctx := cmd.Context()
		if convertTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, convertTimeout)
			defer cancel()
		}

		c := converter.New(cfg.Workers)
		var result *converter.ParseResult
		var archive []byte
		var dest string

		steps := []internal.ProgressStep{
			{
				Message: "Parsing export",
				Fn: func() error {
					var err error
					result, err = c.ParseFileCached(exportPath, cacheManager)
					return err
				},
			},
			{
				Message: "Rendering conversations",
				Fn: func() error {
					var err error
					archive, err = c.Convert(ctx, result.Conversations, opts)
					return err
				},
			},
			{
				Message: "Writing archive",
				Fn: func() error {
					var err error
					dest, err = writeArchive(cfg.OutputDir, converter.ArchiveName(result.Source), archive)
					return err
				},
			},
		}

		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		for _, skipped := range result.Skipped {
			internal.PrintWarning(skipped.Error())
		}
		internal.PrintSuccess(fmt.Sprintf("Converted %d %s conversation(s) to %s", len(result.Conversations), result.Source, dest))
		return nil
	},
}

// writeArchive writes archive bytes as name below dir and returns the path
func writeArchive(dir, name string, archive []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &internal.ExportError{Format: "zip", Path: dir, Err: err}
	}
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, archive, 0644); err != nil {
		return "", &internal.ExportError{Format: "zip", Path: dest, Err: err}
	}
	return dest, nil
}

// convertExport parses, converts and writes one export without progress output
func convertExport(ctx context.Context, c *converter.Converter, cacheManager *internal.CacheManager, exportPath, outDir string, opts internal.ConversionOptions) (string, *converter.ParseResult, error) {
	result, err := c.ParseFileCached(exportPath, cacheManager)
	if err != nil {
		return "", nil, err
	}
	archive, err := c.Convert(ctx, result.Conversations, opts)
	if err != nil {
		return "", nil, err
	}
	dest, err := writeArchive(outDir, converter.ArchiveName(result.Source), archive)
	if err != nil {
		return "", nil, err
	}
	return dest, result, nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
	flags := convertCmd.Flags()
	flags.StringP("format", "f", "md", "Document format (md, mdx)")
	flags.StringP("out", "o", "./exports", "Output directory for the archive")
	flags.Bool("frontmatter", true, "Start each document with YAML frontmatter")
	flags.Bool("timestamps", false, "Add a timestamp to each message heading")
	flags.Bool("separate", true, "Write one file per conversation instead of a single combined file")
	flags.DurationVar(&convertTimeout, "timeout", 0, "Abort the conversion after this long (0 disables)")

	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("output_dir", flags.Lookup("out"))
	_ = viper.BindPFlag("include_frontmatter", flags.Lookup("frontmatter"))
	_ = viper.BindPFlag("add_timestamps", flags.Lookup("timestamps"))
	_ = viper.BindPFlag("separate_files", flags.Lookup("separate"))
}
