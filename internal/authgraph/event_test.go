package authgraph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAuthenticationEvent_DerivedNodeIDs(t *testing.T) {
	base := BaseEvent{
		SrcAccountID: "account:alice",
		SrcHostID:    "host:bastion-01",
		DstAccountID: "account:root",
		DstHostID:    "host:app-dev-02",
		SrcPrivilege: 0.2,
		DstPrivilege: 0.6,
		RawSource:    SourceUnixAuth,
	}
	event, err := NewAuthenticationEvent(base, MechanismKinit)
	require.NoError(t, err)
	require.Equal(t, NodeID("account:alice|host:bastion-01"), event.SrcNodeID())
	require.Equal(t, NodeID("account:root|host:app-dev-02"), event.DstNodeID())
	require.NotEmpty(t, event.ID)
	require.False(t, event.Timestamp.IsZero())
}

func TestNewAuthenticationEvent_RejectsUnknownMechanism(t *testing.T) {
	base := BaseEvent{
		SrcAccountID: "account:alice", SrcHostID: "host:a",
		DstAccountID: "account:bob", DstHostID: "host:b",
		RawSource: SourceCrowdstrike,
	}
	_, err := NewAuthenticationEvent(base, Mechanism("ssh"))
	require.Error(t, err)
}

func TestNewSessionEvent_RejectsUnknownMechanism(t *testing.T) {
	base := BaseEvent{
		SrcAccountID: "account:alice", SrcHostID: "host:a",
		DstAccountID: "account:bob", DstHostID: "host:b",
		RawSource: SourceCrowdstrike,
	}
	_, err := NewSessionEvent(base, Mechanism("kinit"))
	require.Error(t, err)
}

func TestNewAuthenticationEvent_RejectsOutOfRangePrivilege(t *testing.T) {
	base := BaseEvent{
		SrcAccountID: "account:alice", SrcHostID: "host:a",
		DstAccountID: "account:bob", DstHostID: "host:b",
		SrcPrivilege: 1.5,
		RawSource:    SourceCrowdstrike,
	}
	_, err := NewAuthenticationEvent(base, MechanismKinit)
	require.Error(t, err)
}

func TestAuthEvent_JSONRoundTrip(t *testing.T) {
	base := BaseEvent{
		SrcAccountID: "account:alice-admin",
		SrcHostID:    "host:bastion-01",
		DstAccountID: "account:root",
		DstHostID:    "host:app-dev-02",
		SrcPrivilege: 0.3,
		DstPrivilege: 0.9,
		Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		HostID:       "host:app-dev-02",
		RawSource:    SourceUnixAuth,
		Metadata:     map[string]any{"note": "test"},
	}
	original, err := NewAuthenticationEvent(base, MechanismKinit)
	require.NoError(t, err)
	original.KeytabPath = "/tmp/smuggled.keytab"

	data, err := original.MarshalJSON()
	require.NoError(t, err)

	decoded, err := UnmarshalAuthEvent(data)
	require.NoError(t, err)

	require.Equal(t, original.EventID(), decoded.EventID())
	require.Equal(t, original.SrcNodeID(), decoded.SrcNodeID())
	require.Equal(t, original.DstNodeID(), decoded.DstNodeID())
	require.Equal(t, original.Category(), decoded.Category())
	require.Equal(t, original.MechanismValue(), decoded.MechanismValue())

	decodedAuth, ok := decoded.(*AuthenticationEvent)
	require.True(t, ok)
	require.Equal(t, original.KeytabPath, decodedAuth.KeytabPath)
}

func TestUnmarshalAuthEvent_RejectsUnknownCategory(t *testing.T) {
	_, err := UnmarshalAuthEvent([]byte(`{"event_category":"bogus"}`))
	require.Error(t, err)
}
