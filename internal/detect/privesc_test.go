package detect

import (
	"testing"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/stretchr/testify/require"
)

func mustSession(t *testing.T, srcPriv, dstPriv float64, host string, mech authgraph.Mechanism) *authgraph.SessionEvent {
	t.Helper()
	ev, err := authgraph.NewSessionEvent(authgraph.BaseEvent{
		SrcAccountID: "account:alice", SrcHostID: "h1",
		DstAccountID: "account:root", DstHostID: "h1",
		SrcPrivilege: srcPriv, DstPrivilege: dstPriv,
		HostID:    host,
		RawSource: authgraph.SourceUnixAuth,
	}, mech)
	require.NoError(t, err)
	return ev
}

// S1 — Privilege escalation fires with severity=medium.
func TestPrivilegeEscalation_S1(t *testing.T) {
	event := mustSession(t, 0.2, 0.5, "host:h1", authgraph.MechanismSSH)
	result := PrivilegeEscalation(event, PrivilegeEscalationConfig{Enabled: true})
	require.NotNil(t, result)
	require.Equal(t, authgraph.DetectionPrivilegeEscalation, result.DetectionType)
	require.Equal(t, authgraph.SeverityMedium, result.Severity)
	require.InDelta(t, 0.3, result.Metadata["delta"], 1e-9)
}

func TestPrivilegeEscalation_NoFireWhenDisabled(t *testing.T) {
	event := mustSession(t, 0.1, 0.9, "host:h1", authgraph.MechanismSSH)
	require.Nil(t, PrivilegeEscalation(event, PrivilegeEscalationConfig{Enabled: false}))
}

func TestPrivilegeEscalation_NoFireWhenNoDelta(t *testing.T) {
	event := mustSession(t, 0.5, 0.5, "host:h1", authgraph.MechanismSSH)
	require.Nil(t, PrivilegeEscalation(event, PrivilegeEscalationConfig{Enabled: true}))
	event2 := mustSession(t, 0.9, 0.1, "host:h1", authgraph.MechanismSSH)
	require.Nil(t, PrivilegeEscalation(event2, PrivilegeEscalationConfig{Enabled: true}))
}

func TestPrivilegeEscalation_SeverityBands(t *testing.T) {
	cases := []struct {
		delta    float64
		expected authgraph.Severity
	}{
		{0.1, authgraph.SeverityLow},
		{0.3, authgraph.SeverityMedium},
		{0.6, authgraph.SeverityHigh},
		{0.9, authgraph.SeverityCritical},
	}
	for _, c := range cases {
		event := mustSession(t, 0.0, c.delta, "host:h1", authgraph.MechanismSSH)
		result := PrivilegeEscalation(event, PrivilegeEscalationConfig{Enabled: true})
		require.NotNil(t, result)
		require.Equal(t, c.expected, result.Severity, "delta=%v", c.delta)
	}
}
