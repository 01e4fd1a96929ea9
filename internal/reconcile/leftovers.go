package reconcile

import (
	"fmt"
	"strings"

	"github.com/handiism/takeout-restore/internal/model"
	"github.com/handiism/takeout-restore/internal/pool"
)

// CollectLeftovers drains p into a playlist called name.
//
// Positions are assigned densely from zero, last pooled track first.
// Returns nil when the pool is empty.
func CollectLeftovers(p *pool.Pool, name string) *model.Playlist {
	rest := p.Remainder()
	if len(rest) == 0 {
		return nil
	}

	pl := model.NewPlaylist(name)
	for i := range rest {
		pl.Put(i, rest[len(rest)-1-i])
	}
	return pl
}

// FolderKey identifies the output folder of a playlist called name.
// Names that sanitize to the same folder, or differ only in case, share a key.
func FolderKey(name string) string {
	return strings.ToLower(model.FolderName(name))
}

// UniqueName returns name, or "name (2)", "name (3)", ... whose FolderKey
// is not in taken.
func UniqueName(name string, taken map[string]bool) string {
	if !taken[FolderKey(name)] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if !taken[FolderKey(candidate)] {
			return candidate
		}
	}
}
