package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iksnae/chat2md/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat     string
	inspectSampleRows int
	inspectCache      bool
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [export.json]",
	Short: "Inspect the structure of an export or of the parse cache",
	Long: `Inspect the raw structure of an export file:
  • Detected source and number of entries
  • Keys of the first entry
  • ChatGPT: mapping nodes, branch points, nodes off the current branch
  • Claude: message and sender counts

With --cache, inspect the schema and contents of the parse cache database instead.

Examples:
  chat2md inspect conversations.json                # Inspect an export
  chat2md inspect conversations.json --format json  # Machine readable output
  chat2md inspect --cache --sample 5                # Inspect the cache database`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if inspectCache {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return inspectDatabase(out, internal.NewCacheManager(cfg.CacheDir).GetDatabasePath())
		}

		if len(args) == 0 {
			return fmt.Errorf("an export file is required unless --cache is set")
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return &internal.StorageError{Path: args[0], Op: "read", Err: err}
		}
		shape, err := inspectExport(raw)
		if err != nil {
			return err
		}

		switch inspectFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(shape)
		case "text":
			printShape(out, args[0], shape)
			return nil
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}
	},
}

// exportShape summarizes the raw structure of an export
type exportShape struct {
	TopLevel  string          `json:"top_level"`
	Entries   int             `json:"entries"`
	Source    internal.Source `json:"source"`
	FirstKeys []string        `json:"first_keys,omitempty"`

	Nodes          int `json:"nodes,omitempty"`
	BranchPoints   int `json:"branch_points,omitempty"`
	OffBranchNodes int `json:"off_branch_nodes,omitempty"`
	MissingParents int `json:"missing_parents,omitempty"`

	Messages int            `json:"messages,omitempty"`
	Senders  map[string]int `json:"senders,omitempty"`

	Malformed int `json:"malformed,omitempty"`
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

// inspectExport decodes raw and describes its structure
func inspectExport(raw []byte) (*exportShape, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &internal.ParseError{Source: "input", Err: err}
	}

	shape := &exportShape{TopLevel: jsonKind(value), Source: internal.DetectSource(value)}
	items, ok := value.([]any)
	if !ok {
		return shape, nil
	}
	shape.Entries = len(items)
	if len(items) > 0 {
		if first, ok := items[0].(map[string]any); ok {
			for key := range first {
				shape.FirstKeys = append(shape.FirstKeys, key)
			}
			sort.Strings(shape.FirstKeys)
		}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &internal.ParseError{Source: "input", Err: err}
	}

	switch shape.Source {
	case internal.SourceChatGPT:
		for _, entry := range entries {
			conv, err := internal.ParseRawChatGPTConversation(entry)
			if err != nil {
				shape.Malformed++
				continue
			}
			addChatGPTShape(shape, conv)
		}
	case internal.SourceClaude:
		shape.Senders = make(map[string]int)
		for _, entry := range entries {
			conv, err := internal.ParseRawClaudeConversation(entry)
			if err != nil {
				shape.Malformed++
				continue
			}
			shape.Messages += len(conv.ChatMessages)
			for _, msg := range conv.ChatMessages {
				shape.Senders[msg.Sender]++
			}
		}
	}
	return shape, nil
}

func addChatGPTShape(shape *exportShape, conv *internal.RawChatGPTConversation) {
	shape.Nodes += len(conv.Mapping)
	for _, node := range conv.Mapping {
		if node == nil {
			continue
		}
		if len(node.Children) > 1 {
			shape.BranchPoints++
		}
		if parent := node.ParentID(); parent != "" {
			if _, ok := conv.Mapping[parent]; !ok {
				shape.MissingParents++
			}
		}
	}

	onBranch := make(map[string]struct{})
	for id := conv.CurrentNode; id != ""; {
		node, ok := conv.Mapping[id]
		if !ok || node == nil {
			break
		}
		if _, seen := onBranch[id]; seen {
			break
		}
		onBranch[id] = struct{}{}
		id = node.ParentID()
	}
	shape.OffBranchNodes += len(conv.Mapping) - len(onBranch)
}

func printShape(out io.Writer, path string, shape *exportShape) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 %s", path)))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Top level: %s\n", shape.TopLevel)
	fmt.Fprintf(out, "  Source:    %s\n", shape.Source)
	fmt.Fprintf(out, "  Entries:   %d\n", shape.Entries)
	if len(shape.FirstKeys) > 0 {
		fmt.Fprintf(out, "  First entry keys: %s\n", strings.Join(shape.FirstKeys, ", "))
	}

	switch shape.Source {
	case internal.SourceChatGPT:
		fmt.Fprintf(out, "  Mapping nodes:        %d\n", shape.Nodes)
		fmt.Fprintf(out, "  Branch points:        %d\n", shape.BranchPoints)
		fmt.Fprintf(out, "  Off current branch:   %d\n", shape.OffBranchNodes)
		fmt.Fprintf(out, "  Missing parents:      %d\n", shape.MissingParents)
	case internal.SourceClaude:
		fmt.Fprintf(out, "  Messages: %d\n", shape.Messages)
		senders := make([]string, 0, len(shape.Senders))
		for sender := range shape.Senders {
			senders = append(senders, sender)
		}
		sort.Strings(senders)
		for _, sender := range senders {
			fmt.Fprintf(out, "    • %s: %d\n", sender, shape.Senders[sender])
		}
	default:
		fmt.Fprintln(out, warningStyle.Render("  ⚠️  Not a recognised ChatGPT or Claude export"))
	}
	if shape.Malformed > 0 {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("  ⚠️  %d entr(ies) could not be decoded", shape.Malformed)))
	}
}

func inspectDatabase(out io.Writer, dbPath string) error {
	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	if len(tables) == 0 {
		fmt.Fprintln(out, "⚠️  No tables found in database")
		return nil
	}

	fmt.Fprintf(out, "📋 Database: %s\n", dbPath)
	fmt.Fprintf(out, "📊 Found %d table(s)\n\n", len(tables))

	for _, tableName := range tables {
		if err := inspectTable(out, db, tableName); err != nil {
			fmt.Fprintf(out, "⚠️  Error inspecting table %s: %v\n", tableName, err)
			continue
		}
		fmt.Fprintln(out)
	}

	return nil
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// quoteIdent quotes a table or column name for interpolation into SQL
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func inspectTable(out io.Writer, db *sql.DB, tableName string) error {
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(out, "📦 Table: %s\n", tableName)
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")

	var rowCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + quoteIdent(tableName)).Scan(&rowCount); err != nil {
		return fmt.Errorf("failed to get row count: %w", err)
	}
	fmt.Fprintf(out, "📊 Rows: %d\n\n", rowCount)

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	fmt.Fprintf(out, "📐 Schema:\n")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}
	fmt.Fprintln(out)

	if rowCount > 0 && inspectSampleRows > 0 {
		if err := showSampleData(out, db, tableName, columns, inspectSampleRows); err != nil {
			fmt.Fprintf(out, "⚠️  Error showing sample data: %v\n", err)
		}
	}

	return nil
}

type columnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

func getTableSchema(db *sql.DB, tableName string) ([]columnInfo, error) {
	rows, err := db.Query("PRAGMA table_info(" + quoteIdent(tableName) + ")")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []columnInfo
	for rows.Next() {
		var col columnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk > 0
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func showSampleData(out io.Writer, db *sql.DB, tableName string, columns []columnInfo, limit int) error {
	if len(columns) == 0 {
		return nil
	}

	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = quoteIdent(col.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(colNames, ", "), quoteIdent(tableName), limit)
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	fmt.Fprintf(out, "📄 Sample Data (first %d rows):\n", limit)
	rowNum := 0
	for rows.Next() {
		rowNum++
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			fmt.Fprintf(out, "  ⚠️  Row %d: error scanning: %v\n", rowNum, err)
			continue
		}

		fmt.Fprintf(out, "\n  Row %d:\n", rowNum)
		for i, col := range columns {
			fmt.Fprintf(out, "    %s: %s\n", col.Name, formatSampleValue(values[i]))
		}
	}

	return rows.Err()
}

// formatSampleValue shortens a column value to its first line, at most 200 bytes
func formatSampleValue(val interface{}) string {
	if val == nil {
		return "<NULL>"
	}
	var s string
	if b, ok := val.([]byte); ok {
		s = string(b)
	} else {
		s = fmt.Sprintf("%v", val)
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show with --cache")
	inspectCmd.Flags().BoolVar(&inspectCache, "cache", false, "Inspect the parse cache database")
}
