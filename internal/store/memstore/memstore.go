// Package memstore is an in-memory EventStore/AlertStore, used by tests and
// by cmd/detectord's -store=memory mode for local runs without Postgres.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/BrizoSec/privesc-detector/internal/store"
)

// EventStore is a mutex-guarded slice-backed store.EventStore.
type EventStore struct {
	mu     sync.Mutex
	events []authgraph.AuthEvent
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Insert(_ context.Context, event authgraph.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *EventStore) GetRecent(_ context.Context, hostID string, since time.Time) ([]authgraph.AuthEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []authgraph.AuthEvent
	for _, e := range s.events {
		base := e.Base()
		if base.HostID == hostID && !base.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Base().Timestamp.After(out[j].Base().Timestamp)
	})
	return out, nil
}

func (s *EventStore) GetByIDs(_ context.Context, ids []string) ([]authgraph.AuthEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []authgraph.AuthEvent
	for _, e := range s.events {
		if want[e.EventID()] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *EventStore) GetAllForGraph(_ context.Context) ([]authgraph.AuthEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]authgraph.AuthEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// AlertStore is a mutex-guarded slice-backed store.AlertStore.
type AlertStore struct {
	mu     sync.Mutex
	alerts []authgraph.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{}
}

func (s *AlertStore) Insert(_ context.Context, alert authgraph.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *AlertStore) List(_ context.Context, filter store.AlertListFilter) ([]authgraph.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []authgraph.Alert
	for _, a := range s.alerts {
		if filter.DetectionType != "" && a.DetectionType != filter.DetectionType {
			continue
		}
		if !filter.Since.IsZero() && a.TriggeredAt.Before(filter.Since) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].TriggeredAt.After(matched[j].TriggeredAt)
	})

	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		skip = len(matched)
	}
	matched = matched[skip:]

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *AlertStore) GetByID(_ context.Context, alertID string) (*authgraph.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			a := s.alerts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *AlertStore) Acknowledge(_ context.Context, alertID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			s.alerts[i].Acknowledged = true
			return true, nil
		}
	}
	return false, nil
}

var (
	_ store.EventStore = (*EventStore)(nil)
	_ store.AlertStore = (*AlertStore)(nil)
)
