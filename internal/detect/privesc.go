package detect

import (
	"fmt"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
)

// PrivilegeEscalationConfig controls Detection A.
type PrivilegeEscalationConfig struct {
	Enabled bool
}

// PrivilegeEscalation fires when an auth event carries a higher destination
// privilege tier than its source privilege tier.
func PrivilegeEscalation(event authgraph.AuthEvent, cfg PrivilegeEscalationConfig) *Result {
	if !cfg.Enabled {
		return nil
	}

	base := event.Base()
	delta := base.DstPrivilege - base.SrcPrivilege
	if delta <= 0 {
		return nil
	}

	return &Result{
		DetectionType: authgraph.DetectionPrivilegeEscalation,
		Severity:      privilegeEscalationSeverity(delta),
		EdgeIDs:       []authgraph.EventID{event.EventID()},
		NodeIDs:       []authgraph.NodeID{event.SrcNodeID(), event.DstNodeID()},
		HostID:        base.HostID,
		Description: fmt.Sprintf(
			"Privilege escalation on %s: %.2f → %.2f (+%.2f) via %s",
			base.HostID, base.SrcPrivilege, base.DstPrivilege, delta, event.MechanismValue(),
		),
		Metadata: map[string]any{
			"delta":          roundTo4(delta),
			"mechanism":      event.MechanismValue(),
			"event_category": event.Category(),
			"src_privilege":  base.SrcPrivilege,
			"dst_privilege":  base.DstPrivilege,
		},
	}
}

func privilegeEscalationSeverity(delta float64) authgraph.Severity {
	switch {
	case delta < 0.2:
		return authgraph.SeverityLow
	case delta < 0.5:
		return authgraph.SeverityMedium
	case delta < 0.8:
		return authgraph.SeverityHigh
	default:
		return authgraph.SeverityCritical
	}
}

func roundTo4(v float64) float64 {
	const factor = 10000.0
	return float64(int64(v*factor+0.5)) / factor
}
