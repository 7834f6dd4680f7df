package converter

import (
	"os"

	"github.com/iksnae/chat2md/internal"
)

// ParseFileCached is ParseFile backed by the parse cache. A nil cache parses
// directly. Cache failures are logged and never fail the parse. Skipped
// entries are only reported on a fresh parse.
func (c *Converter) ParseFileCached(path string, cache *internal.CacheManager) (*ParseResult, error) {
	if cache == nil {
		return c.ParseFile(path)
	}

	valid, err := cache.IsCacheValid(path)
	if err != nil {
		internal.LogWarn("Cache unavailable: %v", err)
	} else if valid {
		source, conversations, err := cache.LoadConversations(path)
		if err == nil {
			internal.LogInfo("Loaded %d conversation(s) from cache", len(conversations))
			return &ParseResult{Source: source, Conversations: conversations}, nil
		}
		internal.LogWarn("Failed to load cache: %v, parsing...", err)
	}

	// the cache key must describe the bytes that were parsed
	info, statErr := os.Stat(path)
	result, err := c.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if statErr != nil {
		internal.LogWarn("Failed to save cache: %v", statErr)
		return result, nil
	}

	if err := cache.SaveConversationsAt(path, info, result.Source, result.Conversations); err != nil {
		internal.LogWarn("Failed to save cache: %v", err)
	}
	return result, nil
}
