package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <export.json>",
	Short: "List the conversations of an export",
	Long:  `List every conversation of a ChatGPT or Claude export with its id, title, message count and creation date.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cacheManager := openCache(cfg)
		defer closeCache(cacheManager)

		index, err := loadIndex(cfg, cacheManager, args[0])
		if err != nil {
			return err
		}

		displayIndex(cmd.OutOrStdout(), index, time.Now())
		return nil
	},
}

// loadIndex returns conversation summaries, straight from the cache when it
// is current so messages are never decoded.
func loadIndex(cfg *config.Config, cacheManager *internal.CacheManager, path string) (*internal.ConversationIndex, error) {
	if cacheManager != nil {
		if valid, err := cacheManager.IsCacheValid(path); err == nil && valid {
			index, err := cacheManager.LoadIndex(path)
			if err == nil {
				internal.LogInfo("Loaded %d conversation(s) from cache", len(index.Conversations))
				return index, nil
			}
			internal.LogWarn("Failed to load cache index: %v, parsing...", err)
		}
	}

	result, err := loadExport(cfg, cacheManager, path)
	if err != nil {
		return nil, err
	}

	index := &internal.ConversationIndex{
		Conversations: make([]internal.ConversationIndexEntry, 0, len(result.Conversations)),
		Metadata:      internal.CacheMetadata{ExportPath: path, Source: result.Source},
	}
	for _, conv := range result.Conversations {
		index.Conversations = append(index.Conversations, internal.ConversationIndexEntry{
			ID:           conv.ID,
			Title:        conv.Title,
			MessageCount: len(conv.Messages),
			CreateTime:   conv.CreateTime,
			UpdateTime:   conv.UpdateTime,
		})
	}
	return index, nil
}

// formatCreated renders a creation time relative to now
func formatCreated(millis int64, now time.Time) string {
	if millis == 0 {
		return "—"
	}
	t := time.UnixMilli(millis).Local()
	diff := now.Sub(t)
	switch {
	case diff >= 0 && diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff >= 0 && diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff >= 0 && diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func displayIndex(out io.Writer, index *internal.ConversationIndex, now time.Time) {
	if len(index.Conversations) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No conversations found"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("📋 Found %d %s conversation(s)", len(index.Conversations), index.Metadata.Source))
	fmt.Fprintln(out, header)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, entry := range index.Conversations {
		title := entry.Title
		if runes := []rune(title); len(runes) > 50 {
			title = string(runes[:47]) + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(entry.ID),
			nameStyle.Render(title),
			countStyle.Render(strconv.Itoa(entry.MessageCount)),
			dateStyle.Render(formatCreated(entry.CreateTime, now)),
		)
	}

	_ = w.Flush()
	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(index.Conversations[0].ID)+
		idStyle.Render(") with `chat2md show <export.json> <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
}
