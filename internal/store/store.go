// Package store defines the persistence seam the dispatcher and HTTP layer
// depend on: an opaque event/alert document store exposing insert/query
// operations, mirroring the original's EdgeStore/AlertStore split over
// MongoDB collections. internal/store/memstore backs tests and local runs;
// internal/store/pgxstore backs production deployments against Postgres
// JSONB columns.
package store

import (
	"context"
	"time"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
)

// EventStore persists every ingested AuthEvent and serves lookups by
// host+recency and by id list, plus the full unbounded set used to rebuild
// the in-memory graph. The detectors themselves never query it.
type EventStore interface {
	Insert(ctx context.Context, event authgraph.AuthEvent) error
	GetRecent(ctx context.Context, hostID string, since time.Time) ([]authgraph.AuthEvent, error)
	GetByIDs(ctx context.Context, ids []string) ([]authgraph.AuthEvent, error)
	GetAllForGraph(ctx context.Context) ([]authgraph.AuthEvent, error)
}

// AlertListFilter narrows GET /alerts queries.
type AlertListFilter struct {
	Skip          int
	Limit         int
	DetectionType authgraph.DetectionType // empty = any
	Since         time.Time               // zero = unbounded
}

// AlertStore persists fired alerts and serves the alerts API.
type AlertStore interface {
	Insert(ctx context.Context, alert authgraph.Alert) error
	List(ctx context.Context, filter AlertListFilter) ([]authgraph.Alert, error)
	GetByID(ctx context.Context, alertID string) (*authgraph.Alert, error)
	Acknowledge(ctx context.Context, alertID string) (bool, error)
}
