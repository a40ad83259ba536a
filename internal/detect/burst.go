package detect

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
)

// BurstConfig controls Detection B.
type BurstConfig struct {
	WindowSeconds             int
	DistinctAccountThreshold  int
	MaxEventsTracked          int
}

// burstEntry is one (timestamp, account_id) pair tracked per host window.
type burstEntry struct {
	at      time.Time
	account string
}

type hostWindow struct {
	entries []burstEntry // FIFO; oldest at index 0
}

// BurstWindowState is in-memory sliding-window state, keyed by host_id. It
// survives for the lifetime of the process — there is no persistence and
// no cross-process sharing (see spec Non-goals). A single instance is
// shared by every concurrent ingest, so all access is guarded by mu.
type BurstWindowState struct {
	mu      sync.Mutex
	windows map[string]*hostWindow
}

// NewBurstWindowState creates empty per-host window state.
func NewBurstWindowState() *BurstWindowState {
	return &BurstWindowState{windows: make(map[string]*hostWindow)}
}

// record appends (ts, accountID) to host's window, trimming the oldest
// entries once the window exceeds maxEvents. Order-preserving.
func (s *BurstWindowState) record(hostID string, ts time.Time, accountID string, maxEvents int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, ok := s.windows[hostID]
	if !ok {
		win = &hostWindow{}
		s.windows[hostID] = win
	}
	win.entries = append(win.entries, burstEntry{at: ts, account: accountID})
	if maxEvents > 0 {
		for len(win.entries) > maxEvents {
			win.entries = win.entries[1:]
		}
	}
}

// distinctAccountsInWindow evicts entries at or before asOf-windowSeconds
// from the head, then returns the set of distinct accounts remaining.
// Eviction is purely as_of-driven: an event timestamped before an
// already-evicted entry can never resurrect it. The cutoff itself is
// evicted (inclusive boundary) so an entry exactly windowSeconds old has
// already aged out of the window.
func (s *BurstWindowState) distinctAccountsInWindow(hostID string, windowSeconds int, asOf time.Time) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, ok := s.windows[hostID]
	if !ok {
		return map[string]bool{}
	}
	cutoff := asOf.Add(-time.Duration(windowSeconds) * time.Second)
	idx := 0
	for idx < len(win.entries) && !win.entries[idx].at.After(cutoff) {
		idx++
	}
	win.entries = win.entries[idx:]

	distinct := make(map[string]bool, len(win.entries))
	for _, e := range win.entries {
		distinct[e.account] = true
	}
	return distinct
}

// Reset clears window state. If hostID is empty, every host is cleared.
// Exposed for testability per spec.
func (s *BurstWindowState) Reset(hostID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostID == "" {
		s.windows = make(map[string]*hostWindow)
		return
	}
	delete(s.windows, hostID)
}

// AuthBurst records the event in state and fires when the number of
// distinct source accounts seen within the sliding window reaches the
// configured threshold.
func AuthBurst(event authgraph.AuthEvent, state *BurstWindowState, cfg BurstConfig) *Result {
	base := event.Base()
	ts := base.Timestamp.UTC()

	state.record(base.HostID, ts, base.SrcAccountID, cfg.MaxEventsTracked)
	distinct := state.distinctAccountsInWindow(base.HostID, cfg.WindowSeconds, ts)

	if len(distinct) < cfg.DistinctAccountThreshold {
		return nil
	}

	accounts := make([]string, 0, len(distinct))
	for a := range distinct {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)

	nodeIDs := make([]authgraph.NodeID, len(accounts))
	for i, a := range accounts {
		nodeIDs[i] = a
	}

	return &Result{
		DetectionType: authgraph.DetectionAuthBurst,
		Severity:      authgraph.SeverityHigh,
		EdgeIDs:       []authgraph.EventID{event.EventID()},
		NodeIDs:       nodeIDs,
		HostID:        base.HostID,
		Description: fmt.Sprintf(
			"Auth burst on %s: %d distinct accounts within %ds window (threshold: %d)",
			base.HostID, len(accounts), cfg.WindowSeconds, cfg.DistinctAccountThreshold,
		),
		Metadata: map[string]any{
			"distinct_account_count": len(accounts),
			"distinct_accounts":      accounts,
			"window_seconds":         cfg.WindowSeconds,
		},
	}
}
