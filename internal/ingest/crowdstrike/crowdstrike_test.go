package crowdstrike

import (
	"testing"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_FetchEventsProducesConfirmedCrowdstrikeEvents(t *testing.T) {
	n := New()
	require.Equal(t, authgraph.SourceCrowdstrike, n.RawSource())

	events, err := n.FetchEvents()
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, e := range events {
		require.Equal(t, authgraph.SourceCrowdstrike, e.Base().RawSource)
	}
}
