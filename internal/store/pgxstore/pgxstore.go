// Package pgxstore backs store.EventStore/store.AlertStore with Postgres,
// using JSONB columns to give a relational engine the opaque-document-store
// shape the original MongoDB-backed implementation exposed.
package pgxstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/BrizoSec/privesc-detector/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id text PRIMARY KEY,
	host_id text NOT NULL,
	src_node_id text NOT NULL,
	dst_node_id text NOT NULL,
	timestamp timestamptz NOT NULL,
	doc jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS events_host_ts_idx ON events (host_id, timestamp DESC);
CREATE INDEX IF NOT EXISTS events_src_dst_idx ON events (src_node_id, dst_node_id);
CREATE INDEX IF NOT EXISTS events_ts_idx ON events (timestamp DESC);

CREATE TABLE IF NOT EXISTS alerts (
	id text PRIMARY KEY,
	detection_type text NOT NULL,
	triggered_at timestamptz NOT NULL,
	acknowledged boolean NOT NULL DEFAULT false,
	doc jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS alerts_triggered_idx ON alerts (triggered_at DESC);
CREATE INDEX IF NOT EXISTS alerts_type_triggered_idx ON alerts (detection_type, triggered_at DESC);
CREATE INDEX IF NOT EXISTS alerts_ack_idx ON alerts (acknowledged);
`

// Connect opens a pgx connection pool and ensures the schema above exists.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pgxstore: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("pgxstore: schema init: %w", err)
	}
	return pool, nil
}

// EventStore is the Postgres-backed store.EventStore.
type EventStore struct {
	pool *pgxpool.Pool
}

func NewEventStore(pool *pgxpool.Pool) *EventStore { return &EventStore{pool: pool} }

func (s *EventStore) Insert(ctx context.Context, event authgraph.AuthEvent) error {
	doc, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("pgxstore: marshal event: %w", err)
	}
	base := event.Base()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO events (id, host_id, src_node_id, dst_node_id, timestamp, doc)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		event.EventID(), base.HostID, event.SrcNodeID(), event.DstNodeID(), base.Timestamp, doc,
	)
	if err != nil {
		return fmt.Errorf("pgxstore: insert event: %w", err)
	}
	return nil
}

func (s *EventStore) GetRecent(ctx context.Context, hostID string, since time.Time) ([]authgraph.AuthEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM events WHERE host_id = $1 AND timestamp >= $2 ORDER BY timestamp DESC`,
		hostID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: get recent: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *EventStore) GetByIDs(ctx context.Context, ids []string) ([]authgraph.AuthEvent, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM events WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: get by ids: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *EventStore) GetAllForGraph(ctx context.Context) ([]authgraph.AuthEvent, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM events`)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: get all for graph: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]authgraph.AuthEvent, error) {
	var out []authgraph.AuthEvent
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("pgxstore: scan event: %w", err)
		}
		event, err := authgraph.UnmarshalAuthEvent(doc)
		if err != nil {
			return nil, fmt.Errorf("pgxstore: unmarshal event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// AlertStore is the Postgres-backed store.AlertStore.
type AlertStore struct {
	pool *pgxpool.Pool
}

func NewAlertStore(pool *pgxpool.Pool) *AlertStore { return &AlertStore{pool: pool} }

func (s *AlertStore) Insert(ctx context.Context, alert authgraph.Alert) error {
	doc, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("pgxstore: marshal alert: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO alerts (id, detection_type, triggered_at, acknowledged, doc)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		alert.ID, string(alert.DetectionType), alert.TriggeredAt, alert.Acknowledged, doc,
	)
	if err != nil {
		return fmt.Errorf("pgxstore: insert alert: %w", err)
	}
	return nil
}

func (s *AlertStore) List(ctx context.Context, filter store.AlertListFilter) ([]authgraph.Alert, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := `SELECT doc FROM alerts WHERE ($1 = '' OR detection_type = $1) AND ($2::timestamptz IS NULL OR triggered_at >= $2) ORDER BY triggered_at DESC OFFSET $3 LIMIT $4`
	var since any
	if !filter.Since.IsZero() {
		since = filter.Since
	}
	rows, err := s.pool.Query(ctx, query, string(filter.DetectionType), since, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: list alerts: %w", err)
	}
	defer rows.Close()

	var out []authgraph.Alert
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("pgxstore: scan alert: %w", err)
		}
		var alert authgraph.Alert
		if err := json.Unmarshal(doc, &alert); err != nil {
			return nil, fmt.Errorf("pgxstore: unmarshal alert: %w", err)
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

func (s *AlertStore) GetByID(ctx context.Context, alertID string) (*authgraph.Alert, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM alerts WHERE id = $1`, alertID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pgxstore: get alert: %w", err)
	}
	var alert authgraph.Alert
	if err := json.Unmarshal(doc, &alert); err != nil {
		return nil, fmt.Errorf("pgxstore: unmarshal alert: %w", err)
	}
	return &alert, nil
}

func (s *AlertStore) Acknowledge(ctx context.Context, alertID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE alerts SET acknowledged = true, doc = jsonb_set(doc, '{acknowledged}', 'true') WHERE id = $1`,
		alertID,
	)
	if err != nil {
		return false, fmt.Errorf("pgxstore: acknowledge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var (
	_ store.EventStore = (*EventStore)(nil)
	_ store.AlertStore = (*AlertStore)(nil)
)
