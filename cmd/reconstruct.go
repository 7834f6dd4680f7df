package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/export"
	"github.com/spf13/cobra"
)

var (
	reconstructOutput string
	reconstructFormat string
)

// reconstructCmd represents the reconstruct command
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <export.json>",
	Short: "Reconstruct and save the normalized conversations",
	Long: `Reconstruct the conversations of an export and save the normalized model
(JSON, JSONL or YAML, one file per conversation) for debugging.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch reconstructFormat {
		case "json", "jsonl", "yaml":
		default:
			return fmt.Errorf("unsupported format: %s (supported: json, jsonl, yaml)", reconstructFormat)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := cfg.ConversionOptions()
		if err != nil {
			return err
		}
		exporter, err := export.NewExporter(reconstructFormat, opts)
		if err != nil {
			return err
		}

		cacheManager := openCache(cfg)
		defer closeCache(cacheManager)

		result, err := loadExport(cfg, cacheManager, args[0])
		if err != nil {
			return err
		}

		if err := os.MkdirAll(reconstructOutput, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		internal.LogInfo("Saving %d %s conversation(s) as %s", len(result.Conversations), result.Source, reconstructFormat)
		saved := 0
		for i, conv := range result.Conversations {
			path, err := writeConversation(exporter, conv, reconstructOutput)
			if err != nil {
				internal.LogError("%v", err)
				continue
			}
			saved++
			internal.LogDebug("Saved conversation %d/%d: %s", i+1, len(result.Conversations), path)
		}

		internal.PrintSuccess(fmt.Sprintf("Reconstruction complete: %d conversation(s) saved to %s", saved, reconstructOutput))
		return nil
	},
}

// writeConversation exports one conversation into dir, named after its id
func writeConversation(exporter export.Exporter, conv *internal.Conversation, dir string) (string, error) {
	filename := fmt.Sprintf("conversation_%s.%s", export.SanitizeFilename(conv.ID), exporter.Extension())
	path := filepath.Join(dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(conv, file); err != nil {
		_ = file.Close()
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(reconstructCmd)
	reconstructCmd.Flags().StringVarP(&reconstructOutput, "out", "o", "./intermediary", "Output directory for the normalized conversations")
	reconstructCmd.Flags().StringVarP(&reconstructFormat, "format", "f", "json", "Output format (json, jsonl, yaml)")
}
