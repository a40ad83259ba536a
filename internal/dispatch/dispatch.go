// Package dispatch bridges the store layer to the detection layer: it is
// the only place that combines persistence with the pure detection
// functions. Called after a new auth event is persisted and the graph
// rebuilt.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/BrizoSec/privesc-detector/internal/detect"
	"github.com/BrizoSec/privesc-detector/internal/enrichment"
	"github.com/BrizoSec/privesc-detector/internal/store"
)

// Config bundles every detector's configuration.
type Config struct {
	AuthBurst           detect.BurstConfig
	AuthChain           detect.ChainConfig
	PrivilegeEscalation detect.PrivilegeEscalationConfig
	KeytabSmuggling     detect.KeytabSmugglingConfig
}

// Dispatcher runs all applicable detections against a newly inserted event
// and persists any alerts fired, in fixed order: privilege escalation,
// auth burst, auth chain, then keytab smuggling (AuthenticationEvent+kinit
// only). Each alert is persisted before the next detector runs, matching
// the reference dispatcher's per-detection persist-then-continue behavior.
type Dispatcher struct {
	alertStore  store.AlertStore
	burstState  *detect.BurstWindowState
	enrichments *enrichment.Manager
	cfg         Config
}

// New constructs a Dispatcher wired to its collaborators.
func New(alertStore store.AlertStore, burstState *detect.BurstWindowState, enrichments *enrichment.Manager, cfg Config) *Dispatcher {
	return &Dispatcher{
		alertStore:  alertStore,
		burstState:  burstState,
		enrichments: enrichments,
		cfg:         cfg,
	}
}

// OnEventInserted runs every applicable detector against event (whose
// effects are already reflected in graph) and returns the alerts fired,
// having persisted each one.
func (d *Dispatcher) OnEventInserted(ctx context.Context, event authgraph.AuthEvent, graph *authgraph.DirectedGraph) ([]authgraph.Alert, error) {
	var fired []authgraph.Alert

	if result := detect.PrivilegeEscalation(event, d.cfg.PrivilegeEscalation); result != nil {
		alert, err := d.persist(ctx, result)
		if err != nil {
			return fired, err
		}
		fired = append(fired, alert)
	}

	if result := detect.AuthBurst(event, d.burstState, d.cfg.AuthBurst); result != nil {
		alert, err := d.persist(ctx, result)
		if err != nil {
			return fired, err
		}
		fired = append(fired, alert)
	}

	for _, result := range detect.AuthChain(graph, d.cfg.AuthChain, event.SrcNodeID()) {
		alert, err := d.persist(ctx, result)
		if err != nil {
			return fired, err
		}
		fired = append(fired, alert)
	}

	if authEvent, ok := event.(*authgraph.AuthenticationEvent); ok && authEvent.Mechanism == authgraph.MechanismKinit {
		snapshot, err := d.enrichments.Current()
		if err != nil {
			return fired, fmt.Errorf("dispatch: keytab smuggling: %w", err)
		}
		if result := detect.KeytabSmuggling(authEvent, snapshot, d.cfg.KeytabSmuggling); result != nil {
			alert, err := d.persist(ctx, result)
			if err != nil {
				return fired, err
			}
			fired = append(fired, alert)
		}
	}

	return fired, nil
}

func (d *Dispatcher) persist(ctx context.Context, result *detect.Result) (authgraph.Alert, error) {
	alert := authgraph.Alert{
		ID:            authgraph.NewEventID(),
		DetectionType: result.DetectionType,
		Severity:      result.Severity,
		TriggeredAt:   time.Now().UTC(),
		EdgeIDs:       result.EdgeIDs,
		NodeIDs:       result.NodeIDs,
		HostID:        result.HostID,
		Description:   result.Description,
		Metadata:      result.Metadata,
	}
	if err := d.alertStore.Insert(ctx, alert); err != nil {
		return authgraph.Alert{}, fmt.Errorf("dispatch: persist alert: %w", err)
	}
	return alert, nil
}
