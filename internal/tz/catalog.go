// Package tz enumerates the platform's IANA timezone database and detects
// the process default zone. It owns no timezone logic itself; resolution and
// offset math are delegated to the standard library's tzdata handling.
package tz

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// zoneDirs are the candidate tzdata locations, in the order the runtime's
// own zoneinfo loader probes them.
var zoneDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
	"/etc/zoneinfo",
}

// Catalog lists valid IANA zone identifiers and the detected default zone.
// The zone list is scanned once and reused; the underlying database does not
// change during the lifetime of the process.
type Catalog struct {
	once  sync.Once
	zones []string
}

// NewCatalog returns an empty catalog; the zone scan happens lazily on the
// first Zones call.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Zones returns all IANA zone identifiers found in the platform database,
// sorted. Identifiers that the runtime cannot actually load are excluded, so
// every returned name is safe to pass to Resolve.
func (c *Catalog) Zones() []string {
	c.once.Do(func() {
		c.zones = scanZones()
	})
	return c.zones
}

// Resolve validates a zone identifier against the platform database and
// returns its Location. This is the boundary where unknown zones are
// rejected; code past this point never sees an unresolvable identifier.
func (c *Catalog) Resolve(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("resolve zone: empty identifier")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("resolve zone %q: %w", name, err)
	}
	return loc, nil
}

// Default returns the process's detected default zone identifier: the TZ
// environment variable if set and valid, otherwise the target of the
// /etc/localtime symlink, otherwise "UTC".
func (c *Catalog) Default() string {
	if tz := os.Getenv("TZ"); tz != "" && tz != ":" {
		name := strings.TrimPrefix(tz, ":")
		if _, err := time.LoadLocation(name); err == nil {
			return name
		}
	}

	if link, err := os.Readlink("/etc/localtime"); err == nil {
		if i := strings.Index(link, "zoneinfo/"); i >= 0 {
			name := link[i+len("zoneinfo/"):]
			if _, err := time.LoadLocation(name); err == nil {
				return name
			}
		}
	}

	return "UTC"
}

func scanZones() []string {
	seen := make(map[string]struct{})

	for _, dir := range zoneDirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			name, relErr := filepath.Rel(dir, path)
			if relErr != nil || name == "." {
				return nil
			}
			// The posix/ and right/ trees duplicate every zone; skip them
			// along with non-zone files (all zone names start uppercase).
			first := name[0]
			if first < 'A' || first > 'Z' {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := seen[name]; ok {
				return nil
			}
			if _, err := time.LoadLocation(name); err == nil {
				seen[name] = struct{}{}
			}
			return nil
		})

		if len(seen) > 0 {
			break
		}
	}

	// Always offer UTC even when no tzdata directory exists (e.g. minimal
	// containers); the runtime handles it without the database.
	seen["UTC"] = struct{}{}

	zones := make([]string, 0, len(seen))
	for z := range seen {
		zones = append(zones, z)
	}
	sort.Strings(zones)
	return zones
}
