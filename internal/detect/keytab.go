package detect

import (
	"fmt"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/BrizoSec/privesc-detector/internal/enrichment"
)

// KeytabSmugglingConfig controls Detection D.
type KeytabSmugglingConfig struct {
	Enabled bool
}

// KeytabSmuggling fires when a confirmed kinit authentication uses a keytab
// that is not registered in the vault, or not expected at this host. Only
// AuthenticationEvent with mechanism kinit and a non-empty KeytabPath are
// evaluated; the dispatcher is responsible for routing only such events
// here.
func KeytabSmuggling(event *authgraph.AuthenticationEvent, enrichments *enrichment.AllEnrichments, cfg KeytabSmugglingConfig) *Result {
	if !cfg.Enabled {
		return nil
	}
	if event.Mechanism != authgraph.MechanismKinit {
		return nil
	}
	if event.KeytabPath == "" {
		return nil
	}

	inVault := enrichments.Vault.IsKeytabInVault(event.KeytabPath)
	inExpected := enrichments.Vault.IsKeytabExpected(event.HostID, event.KeytabPath)

	if inVault && inExpected {
		return nil
	}

	reason := fmt.Sprintf("keytab '%s' not expected on %s", event.KeytabPath, event.HostID)
	if !inVault {
		reason = "keytab not registered in vault"
	}

	isCritical := enrichments.CriticalAccounts.IsCritical(event.SrcAccountID)
	severity := authgraph.SeverityHigh
	if isCritical {
		severity = authgraph.SeverityCritical
	}

	return &Result{
		DetectionType: authgraph.DetectionKeytabSmuggling,
		Severity:      severity,
		EdgeIDs:       []authgraph.EventID{event.EventID()},
		NodeIDs:       []authgraph.NodeID{event.SrcNodeID(), event.DstNodeID()},
		HostID:        event.HostID,
		Description: fmt.Sprintf(
			"Keytab smuggling on %s: %s (account: %s)",
			event.HostID, reason, event.SrcAccountID,
		),
		Metadata: map[string]any{
			"keytab_path":           event.KeytabPath,
			"in_vault":              inVault,
			"in_expected_location":  inExpected,
			"account_is_critical":   isCritical,
		},
	}
}
