// Package preload warms upcoming creative payloads into the on-disk media cache
// so their bytes are local before the item reaches the screen.
package preload

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/metafates/gache"

	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/filesystem"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/network"
	"github.com/marquee-cli/marquee/util"
	"github.com/marquee-cli/marquee/where"
)

// entry records one warmed creative payload.
type entry struct {
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

var (
	manifestOnce sync.Once
	manifest     *gache.Cache[map[string]entry]
)

// manifestCache lazily builds the gache-backed preload manifest, so tests can
// swap in the in-memory filesystem before any path is resolved.
func manifestCache() *gache.Cache[map[string]entry] {
	manifestOnce.Do(func() {
		manifest = gache.New[map[string]entry](&gache.Options{
			Path:       where.Preloads(),
			Lifetime:   24 * time.Hour,
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return manifest
}

// Path returns the deterministic cache location for a creative payload.
func Path(item creative.Item) string {
	name := fmt.Sprintf("%d_%s", item.ID, util.SanitizeFilename(filepath.Base(item.CreativeURL)))
	return filepath.Join(where.Media(), name)
}

// Warmed reports whether the item's payload is already present in the cache.
func Warmed(item creative.Item) bool {
	cached, expired, err := manifestCache().Get()
	if err != nil || expired || cached == nil {
		return false
	}

	e, ok := cached[item.CreativeURL]
	if !ok {
		return false
	}

	exists, err := filesystem.API().Exists(e.Path)
	return err == nil && exists
}

// Warm fetches the item's payload into the media cache if it is not already
// there, returning the local path. Tag creatives point at live third-party
// documents and are never cached.
func Warm(ctx context.Context, item creative.Item) (string, error) {
	if item.Category() == creative.CategoryTag {
		return "", nil
	}

	if Warmed(item) {
		return Path(item), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.CreativeURL, nil)
	if err != nil {
		return "", fmt.Errorf("preload request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("preload fetch: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("preload fetch: HTTP %d for %s", resp.StatusCode, item.CreativeURL)
	}

	path := Path(item)
	if err := filesystem.API().WriteReader(path, resp.Body); err != nil {
		return "", fmt.Errorf("preload write: %w", err)
	}

	stat, err := filesystem.API().Stat(path)
	if err != nil {
		return "", fmt.Errorf("preload stat: %w", err)
	}

	cached, _, err := manifestCache().Get()
	if err != nil || cached == nil {
		cached = make(map[string]entry)
	}
	cached[item.CreativeURL] = entry{
		URL:       item.CreativeURL,
		Path:      path,
		Size:      stat.Size(),
		FetchedAt: time.Now(),
	}
	if err := manifestCache().Set(cached); err != nil {
		log.Warnf("preload manifest update failed: %v", err)
	}

	log.Debugf("warmed creative %d (%d bytes)", item.ID, stat.Size())
	return path, nil
}

// CollectGarbage prunes cached payloads whose manifest entries have expired.
func CollectGarbage() {
	cached, expired, err := manifestCache().Get()
	if err != nil || cached == nil {
		return
	}
	if !expired {
		return
	}

	for _, e := range cached {
		_ = filesystem.API().Remove(e.Path)
	}
	_ = manifestCache().Set(make(map[string]entry))
}
