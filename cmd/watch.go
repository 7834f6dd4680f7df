package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/converter"
	"github.com/spf13/cobra"
)

var (
	watchOutput   string
	watchDebounce time.Duration
	watchExisting bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Convert exports as they appear in a directory",
	Long: `Watch a directory and convert every export JSON file written into it.

Each export is converted with the configured options into
<out>/<export-name>/chat-export-<source>.zip. Files that are not ChatGPT or
Claude exports are skipped. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		info, err := os.Stat(dir)
		if err != nil {
			return &internal.StorageError{Path: dir, Op: "stat", Err: err}
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := cfg.ConversionOptions()
		if err != nil {
			return err
		}
		outDir := cfg.OutputDir
		if watchOutput != "" {
			outDir = watchOutput
		}

		cacheManager := openCache(cfg)
		defer closeCache(cacheManager)
		c := converter.New(cfg.Workers)

		handle := func(ctx context.Context, path string) {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			dest, result, err := convertExport(ctx, c, cacheManager, path, filepath.Join(outDir, base), opts)
			var unsupported *internal.UnsupportedFormatError
			switch {
			case errors.As(err, &unsupported):
				internal.LogInfo("Skipping %s: not a chat export", path)
			case err != nil:
				internal.PrintError(fmt.Sprintf("Failed to convert %s: %v", path, err))
			default:
				internal.PrintSuccess(fmt.Sprintf("Converted %d %s conversation(s) from %s to %s", len(result.Conversations), result.Source, filepath.Base(path), dest))
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watchExisting {
			for _, path := range existingExports(dir) {
				handle(ctx, path)
			}
		}

		w, err := newExportWatcher(dir, watchDebounce, handle)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		internal.PrintInfo(fmt.Sprintf("Watching %s for exports (Ctrl-C to stop)", dir))
		return w.Run(ctx)
	},
}

// exportWatcher debounces fsnotify events for export files. A path is
// handled once it has been quiet for the debounce interval.
type exportWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	handle   func(ctx context.Context, path string)

	mu      sync.Mutex
	pending map[string]time.Time // path -> last change
}

func newExportWatcher(dir string, debounce time.Duration, handle func(ctx context.Context, path string)) (*exportWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, &internal.StorageError{Path: dir, Op: "watch", Err: err}
	}
	return &exportWatcher{
		watcher:  watcher,
		debounce: debounce,
		handle:   handle,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run processes events until ctx is done
func (w *exportWatcher) Run(ctx context.Context) error {
	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && isExportCandidate(event.Name) {
				w.touch(event.Name, time.Now())
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.forget(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			internal.LogWarn("Watcher error: %v", err)

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.handle(ctx, path)
			}
		}
	}
}

// Close stops watching
func (w *exportWatcher) Close() error {
	return w.watcher.Close()
}

func (w *exportWatcher) touch(path string, at time.Time) {
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

func (w *exportWatcher) forget(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

// due removes and returns, sorted, the paths quiet for at least the debounce interval
func (w *exportWatcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// isExportCandidate reports whether path looks like an export JSON file
func isExportCandidate(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".json")
}

// existingExports lists the export candidates already in dir
func existingExports(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		internal.LogWarn("Failed to read %s: %v", dir, err)
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && isExportCandidate(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchOutput, "out", "o", "", "Output directory (default from config output_dir)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a changed file is converted")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Also convert exports already in the directory")
}
