package unixauth

import (
	"testing"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_FetchEventsIncludesKeytabEvent(t *testing.T) {
	n := New()
	require.Equal(t, authgraph.SourceUnixAuth, n.RawSource())

	events, err := n.FetchEvents()
	require.NoError(t, err)
	require.Len(t, events, 3)

	authEvent, ok := events[1].(*authgraph.AuthenticationEvent)
	require.True(t, ok)
	require.Equal(t, authgraph.MechanismKinit, authEvent.Mechanism)
	require.Equal(t, "/tmp/smuggled.keytab", authEvent.KeytabPath)
}
