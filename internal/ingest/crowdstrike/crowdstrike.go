// Package crowdstrike stubs a CrowdStrike Falcon ingest adapter. It returns
// a fixed set of mock confirmed session events that simulate what the real
// Falcon Event Streams / Detections API would produce after normalization.
//
// Replace Normalizer.FetchEvents with a real Falcon API client when
// credentials are available; the return contract ([]authgraph.AuthEvent)
// must be preserved.
package crowdstrike

import (
	"time"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
)

// Normalizer is the crowdstrike ingest.Normalizer.
type Normalizer struct{}

func New() Normalizer { return Normalizer{} }

func (Normalizer) RawSource() authgraph.RawSource { return authgraph.SourceCrowdstrike }

func (Normalizer) FetchEvents() ([]authgraph.AuthEvent, error) {
	now := time.Now().UTC()

	escalate, err := authgraph.NewSessionEvent(authgraph.BaseEvent{
		SrcAccountID: "account:jsmith", SrcHostID: "host:web-prod-01",
		DstAccountID: "account:svc-deploy", DstHostID: "host:web-prod-01",
		SrcPrivilege: 0.2, DstPrivilege: 0.7,
		HostID:    "host:web-prod-01",
		RawSource: authgraph.SourceCrowdstrike,
		Timestamp: now,
		Metadata: map[string]any{
			"falcon_event_id": "cs-event-001",
			"process":         "sudo",
			"command_line":    "sudo -u svc-deploy bash",
		},
	}, authgraph.MechanismSu)
	if err != nil {
		return nil, err
	}

	rootEscalation, err := authgraph.NewSessionEvent(authgraph.BaseEvent{
		SrcAccountID: "account:svc-deploy", SrcHostID: "host:web-prod-01",
		DstAccountID: "account:root", DstHostID: "host:web-prod-01",
		SrcPrivilege: 0.7, DstPrivilege: 1.0,
		HostID:    "host:web-prod-01",
		RawSource: authgraph.SourceCrowdstrike,
		Timestamp: now,
		Metadata: map[string]any{
			"falcon_event_id": "cs-event-002",
			"process":         "su",
			"command_line":    "su -",
		},
	}, authgraph.MechanismSu)
	if err != nil {
		return nil, err
	}

	lateralMove, err := authgraph.NewSessionEvent(authgraph.BaseEvent{
		SrcAccountID: "account:jsmith", SrcHostID: "host:web-prod-01",
		DstAccountID: "account:jsmith", DstHostID: "host:db-prod-01",
		SrcPrivilege: 0.5, DstPrivilege: 0.5,
		HostID:    "host:db-prod-01",
		RawSource: authgraph.SourceCrowdstrike,
		Timestamp: now,
		Metadata: map[string]any{
			"falcon_event_id": "cs-event-003",
			"remote_host":     "db-prod-01",
		},
	}, authgraph.MechanismSSH)
	if err != nil {
		return nil, err
	}

	return []authgraph.AuthEvent{escalate, rootEscalation, lateralMove}, nil
}
