package enrichment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotLoaded is returned by Manager.Current when read before LoadSync has
// completed — a programmer error, per spec: it fails loudly rather than
// silently serving a zero-value snapshot.
var ErrNotLoaded = errors.New("enrichment: cache manager not yet loaded")

// AllEnrichments bundles both enrichment caches together. It is immutable
// once published: Manager hands out a *AllEnrichments and never mutates the
// object a reader already holds — refresh always builds a brand new one and
// swaps the pointer.
type AllEnrichments struct {
	Vault            VaultCache
	CriticalAccounts CriticalAccountsCache
}

// Config controls the enrichment manager's background refresh cadence.
type Config struct {
	RefreshIntervalSeconds int
}

// Manager holds exactly one current AllEnrichments snapshot and runs a
// single background refresh goroutine. Readers obtain the current snapshot
// via an atomic pointer load — no lock needed, since the snapshot itself is
// never mutated after publication.
type Manager struct {
	cfg          Config
	vaultStore   VaultStore
	accountStore CriticalAccountsStore
	log          zerolog.Logger

	current atomic.Pointer[AllEnrichments]

	mu       sync.Mutex // guards task lifecycle (start/stop)
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewManager constructs a Manager backed by the given stores.
func NewManager(cfg Config, vaultStore VaultStore, accountStore CriticalAccountsStore, log zerolog.Logger) *Manager {
	return &Manager{cfg: cfg, vaultStore: vaultStore, accountStore: accountStore, log: log}
}

// LoadSync builds the first snapshot synchronously, before serving begins.
func (m *Manager) LoadSync() error {
	snap, err := m.buildSnapshot()
	if err != nil {
		return err
	}
	m.current.Store(snap)
	return nil
}

// Current returns the current snapshot. Calling this before LoadSync
// completes returns ErrNotLoaded.
func (m *Manager) Current() (*AllEnrichments, error) {
	snap := m.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// StartRefreshLoop launches the single background refresh goroutine. A
// second call without an intervening Stop is a no-op.
func (m *Manager) StartRefreshLoop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.refreshLoop(loopCtx)
}

func (m *Manager) refreshLoop(ctx context.Context) {
	defer close(m.done)
	interval := time.Duration(m.cfg.RefreshIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 300 * time.Second
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Cancellation during sleep is the expected path — never
			// surfaced as an error.
			return
		case <-timer.C:
			if err := m.refreshOnce(); err != nil {
				m.log.Error().Err(err).Msg("enrichment refresh failed, keeping previous snapshot")
			}
			timer.Reset(interval)
		}
	}
}

func (m *Manager) refreshOnce() (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Msg("enrichment refresh panicked, keeping previous snapshot")
		}
	}()
	snap, buildErr := m.buildSnapshot()
	if buildErr != nil {
		return buildErr
	}
	m.current.Store(snap)
	return nil
}

// Stop cancels the refresh task and waits for it to terminate.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}
	m.cancel()
	<-m.done
	m.started = false
}

func (m *Manager) buildSnapshot() (*AllEnrichments, error) {
	rawVault, err := m.vaultStore.Load()
	if err != nil {
		return nil, err
	}
	rawAccounts, err := m.accountStore.Load()
	if err != nil {
		return nil, err
	}
	return &AllEnrichments{
		Vault:            NewVaultCache(rawVault),
		CriticalAccounts: NewCriticalAccountsCache(rawAccounts),
	}, nil
}
