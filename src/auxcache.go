package locate

import (
	"os"
	"sync"
)

// AuxCache is a load-once, mtime-checked in-memory cache for the static
// auxiliary reference data (craton polygons, zone statistics) spec §1 calls
// out as an external collaborator: "file-change/serialization caches for
// the static auxiliary data." No third-party file-watcher library appears
// anywhere in the retrieved pack, so this follows the teacher's own
// "read once, stat before trusting the cache" idiom for its binary
// ephemeris/antenna tables rather than reaching for an ecosystem watcher.
type AuxCache struct {
	mu sync.Mutex

	zoneKeysPath  string
	zoneStatsPath string
	zoneModTime   int64

	zoneTable *ZoneStatsTable
	cratons   *CratonSet
}

// NewAuxCache constructs a cache bound to a zone-keys/zone-stats file pair.
func NewAuxCache(zoneKeysPath, zoneStatsPath string) *AuxCache {
	return &AuxCache{zoneKeysPath: zoneKeysPath, zoneStatsPath: zoneStatsPath}
}

// ZoneStatsTable returns the cached table, reloading it if either backing
// file's mtime has advanced since the last load.
func (c *AuxCache) ZoneStatsTable() (*ZoneStatsTable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	latest, err := c.latestModTime()
	if err != nil {
		return nil, err
	}
	if c.zoneTable != nil && latest == c.zoneModTime {
		return c.zoneTable, nil
	}

	table, err := LoadZoneStatsTable(c.zoneKeysPath, c.zoneStatsPath)
	if err != nil {
		return nil, err
	}
	c.zoneTable = table
	c.zoneModTime = latest
	return c.zoneTable, nil
}

// SetCratons installs a craton polygon set directly (craton polygons are
// small enough to load eagerly rather than lazily per request).
func (c *AuxCache) SetCratons(cratons *CratonSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cratons = cratons
}

func (c *AuxCache) Cratons() *CratonSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cratons
}

func (c *AuxCache) latestModTime() (int64, error) {
	keysInfo, err := os.Stat(c.zoneKeysPath)
	if err != nil {
		return 0, err
	}
	statsInfo, err := os.Stat(c.zoneStatsPath)
	if err != nil {
		return 0, err
	}
	latest := keysInfo.ModTime().UnixNano()
	if t := statsInfo.ModTime().UnixNano(); t > latest {
		latest = t
	}
	return latest, nil
}
