// Package enrichment holds the two enrichment caches (vault, critical
// accounts) and the manager that publishes immutable snapshots of both via
// an atomic pointer swap, refreshed on a background interval.
package enrichment

// VaultCache is a typed, read-only wrapper around vault keytab data:
// host_id → set of expected keytab paths.
type VaultCache struct {
	keytabsByHost map[string]map[string]bool
}

// NewVaultCache builds a VaultCache from a raw host → paths mapping.
func NewVaultCache(raw map[string][]string) VaultCache {
	byHost := make(map[string]map[string]bool, len(raw))
	for host, paths := range raw {
		set := make(map[string]bool, len(paths))
		for _, p := range paths {
			set[p] = true
		}
		byHost[host] = set
	}
	return VaultCache{keytabsByHost: byHost}
}

// IsKeytabExpected reports whether keytabPath is among the expected
// locations for hostID.
func (c VaultCache) IsKeytabExpected(hostID, keytabPath string) bool {
	return c.keytabsByHost[hostID][keytabPath]
}

// IsKeytabInVault reports whether keytabPath is registered for any host.
func (c VaultCache) IsKeytabInVault(keytabPath string) bool {
	for _, paths := range c.keytabsByHost {
		if paths[keytabPath] {
			return true
		}
	}
	return false
}

// HostCount returns the number of hosts the cache has keytab data for —
// used by GET /enrichment/status.
func (c VaultCache) HostCount() int { return len(c.keytabsByHost) }

// VaultStore loads the raw vault data backing a VaultCache. StaticVaultStore
// is the only implementation in this module; cmd/detectord uses it with
// DefaultVaultSeed.
type VaultStore interface {
	Load() (map[string][]string, error)
}

// StaticVaultStore returns a fixed snapshot — useful for local runs and as
// the seed data until a real vault integration is wired in.
type StaticVaultStore struct {
	Data map[string][]string
}

func (s StaticVaultStore) Load() (map[string][]string, error) {
	return s.Data, nil
}
