package detect

import (
	"testing"
	"time"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/stretchr/testify/require"
)

func mustBurstEvent(t *testing.T, account, host string, at time.Time) *authgraph.SessionEvent {
	t.Helper()
	ev, err := authgraph.NewSessionEvent(authgraph.BaseEvent{
		SrcAccountID: account, SrcHostID: host,
		DstAccountID: "account:root", DstHostID: host,
		SrcPrivilege: 0.1, DstPrivilege: 0.1,
		HostID:    host,
		Timestamp: at,
		RawSource: authgraph.SourceUnixAuth,
	}, authgraph.MechanismSSH)
	require.NoError(t, err)
	return ev
}

// S2 — 3 distinct accounts within the window fires on the 3rd event.
func TestAuthBurst_S2_FiresOnThirdDistinctAccount(t *testing.T) {
	state := NewBurstWindowState()
	cfg := BurstConfig{WindowSeconds: 60, DistinctAccountThreshold: 3, MaxEventsTracked: 1000}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Nil(t, AuthBurst(mustBurstEvent(t, "account:u0", "host:h1", base), state, cfg))
	require.Nil(t, AuthBurst(mustBurstEvent(t, "account:u1", "host:h1", base.Add(10*time.Second)), state, cfg))

	result := AuthBurst(mustBurstEvent(t, "account:u2", "host:h1", base.Add(20*time.Second)), state, cfg)
	require.NotNil(t, result)
	require.Equal(t, authgraph.DetectionAuthBurst, result.DetectionType)
	require.Equal(t, authgraph.SeverityHigh, result.Severity)
	require.Equal(t, []authgraph.NodeID{"account:u0", "account:u1", "account:u2"}, result.NodeIDs)
}

// S3 — eviction: u0,u1 at t=0, u2 at t=60s with a 60s window leaves only u2
// in scope once it is recorded, so no alert fires.
func TestAuthBurst_S3_EvictionPreventsAlert(t *testing.T) {
	state := NewBurstWindowState()
	cfg := BurstConfig{WindowSeconds: 60, DistinctAccountThreshold: 3, MaxEventsTracked: 1000}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Nil(t, AuthBurst(mustBurstEvent(t, "account:u0", "host:h1", base), state, cfg))
	require.Nil(t, AuthBurst(mustBurstEvent(t, "account:u1", "host:h1", base), state, cfg))

	result := AuthBurst(mustBurstEvent(t, "account:u2", "host:h1", base.Add(60*time.Second)), state, cfg)
	require.Nil(t, result)
}

func TestAuthBurst_ResetClearsState(t *testing.T) {
	state := NewBurstWindowState()
	cfg := BurstConfig{WindowSeconds: 60, DistinctAccountThreshold: 2, MaxEventsTracked: 1000}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Nil(t, AuthBurst(mustBurstEvent(t, "account:u0", "host:h1", base), state, cfg))
	state.Reset("host:h1")

	result := AuthBurst(mustBurstEvent(t, "account:u1", "host:h1", base), state, cfg)
	require.Nil(t, result, "reset should have discarded u0, leaving only 1 distinct account")
}

func TestAuthBurst_DistinctHostsDoNotInterfere(t *testing.T) {
	state := NewBurstWindowState()
	cfg := BurstConfig{WindowSeconds: 60, DistinctAccountThreshold: 2, MaxEventsTracked: 1000}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Nil(t, AuthBurst(mustBurstEvent(t, "account:u0", "host:h1", base), state, cfg))
	require.Nil(t, AuthBurst(mustBurstEvent(t, "account:u1", "host:h2", base), state, cfg))
}
