package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/config"
	"github.com/iksnae/chat2md/internal/export"
	"github.com/spf13/cobra"
)

var (
	limit    int
	showRaw  bool
	showTime bool
)

var (
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	remainingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <export.json> <conversation-id>",
	Short: "Show a single conversation",
	Long: `Render one conversation of an export as Markdown in the terminal.

Use --raw to print the plain Markdown instead, e.g. to pipe it into a file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportPath, id := args[0], args[1]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cacheManager := openCache(cfg)
		defer closeCache(cacheManager)

		conv, err := findConversation(cfg, cacheManager, exportPath, id)
		if err != nil {
			return err
		}

		opts, err := cfg.ConversionOptions()
		if err != nil {
			return err
		}
		opts.IncludeFrontmatter = false
		opts.AddTimestamps = opts.AddTimestamps || showTime

		out := cmd.OutOrStdout()
		shown, remaining := limitMessages(conv, limit)
		document := export.Render(shown, opts)

		if showRaw || !internal.IsStdoutTTY() {
			_, err := io.WriteString(out, document)
			return err
		}

		displayConversationHeader(out, conv)
		fmt.Fprint(out, renderMarkdown(document))
		if remaining > 0 {
			fmt.Fprintln(out, remainingStyle.Render(fmt.Sprintf("... (%d more message(s))", remaining)))
		}
		return nil
	},
}

// findConversation looks a conversation up by id, from the cache when possible
func findConversation(cfg *config.Config, cacheManager *internal.CacheManager, path, id string) (*internal.Conversation, error) {
	if cacheManager != nil {
		if valid, err := cacheManager.IsCacheValid(path); err == nil && valid {
			conv, err := cacheManager.LoadConversation(path, id)
			if err == nil {
				internal.LogDebug("Found conversation %s in cache", id)
				return conv, nil
			}
			internal.LogDebug("Conversation not in cache: %v", err)
		}
	}

	result, err := loadExport(cfg, cacheManager, path)
	if err != nil {
		return nil, err
	}

	var found *internal.Conversation
	for _, conv := range result.Conversations {
		// later duplicates win, as in the archive
		if conv.ID == id {
			found = conv
		}
	}
	if found == nil {
		return nil, fmt.Errorf("conversation not found: %s (use 'chat2md list %s' to see available ids)", id, path)
	}
	return found, nil
}

// limitMessages returns a copy of conv with at most n messages (n <= 0 keeps
// all) and the number left out.
func limitMessages(conv *internal.Conversation, n int) (*internal.Conversation, int) {
	if n <= 0 || n >= len(conv.Messages) {
		return conv, 0
	}
	limited := *conv
	limited.Messages = conv.Messages[:n]
	return &limited, len(conv.Messages) - n
}

func displayConversationHeader(out io.Writer, conv *internal.Conversation) {
	fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", conv.Title)))

	metaParts := []string{fmt.Sprintf("ID: %s", conv.ID)}
	if created := conv.GetCreatedAt(); !created.IsZero() {
		metaParts = append(metaParts, fmt.Sprintf("Created: %s", created.Local().Format("2006-01-02 15:04")))
	}
	metaParts = append(metaParts, fmt.Sprintf("Messages: %d", len(conv.Messages)))
	fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
}

// renderMarkdown renders Markdown for the terminal, falling back to the
// plain text when glamour cannot be initialised.
func renderMarkdown(document string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		internal.LogDebug("Markdown renderer unavailable: %v", err)
		return document
	}
	rendered, err := renderer.Render(document)
	if err != nil {
		internal.LogDebug("Markdown rendering failed: %v", err)
		return document
	}
	return rendered
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print plain Markdown without terminal rendering")
	showCmd.Flags().BoolVar(&showTime, "timestamps", false, "Show message timestamps")
}
