package authgraph

import (
	"encoding/json"
	"fmt"
	"time"
)

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// wireEvent is the canonical JSON shape for both AuthEvent variants. The
// discriminator field is event_category, per spec.
type wireEvent struct {
	ID            EventID        `json:"id"`
	SrcAccountID  string         `json:"src_account_id"`
	SrcHostID     string         `json:"src_host_id"`
	DstAccountID  string         `json:"dst_account_id"`
	DstHostID     string         `json:"dst_host_id"`
	SrcPrivilege  float64        `json:"src_privilege"`
	DstPrivilege  float64        `json:"dst_privilege"`
	Timestamp     string         `json:"timestamp"`
	SessionID     string         `json:"session_id,omitempty"`
	HostID        string         `json:"host_id"`
	RawSource     RawSource      `json:"raw_source"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	EventCategory EventCategory  `json:"event_category"`
	Mechanism     Mechanism      `json:"mechanism"`

	// AuthenticationEvent-only
	KeytabPath string `json:"keytab_path,omitempty"`
	Realm      string `json:"realm,omitempty"`
	Principal  string `json:"principal,omitempty"`

	// SessionEvent-only
	AuthMethod  string `json:"auth_method,omitempty"`
	CommandLine string `json:"command_line,omitempty"`

	// Derived, read-only on the wire.
	SrcNodeID NodeID `json:"src_node_id"`
	DstNodeID NodeID `json:"dst_node_id"`
}

// MarshalJSON emits the canonical wire shape, including the computed
// src_node_id/dst_node_id fields (derived, never stored independently).
func (e *AuthenticationEvent) MarshalJSON() ([]byte, error) {
	w := wireEventFromBase(e.BaseEvent, CategoryAuthentication, e.Mechanism)
	w.KeytabPath = e.KeytabPath
	w.Realm = e.Realm
	w.Principal = e.Principal
	return json.Marshal(w)
}

func (e *SessionEvent) MarshalJSON() ([]byte, error) {
	w := wireEventFromBase(e.BaseEvent, CategorySession, e.Mechanism)
	w.AuthMethod = e.AuthMethod
	w.CommandLine = e.CommandLine
	return json.Marshal(w)
}

func wireEventFromBase(b BaseEvent, cat EventCategory, mech Mechanism) wireEvent {
	return wireEvent{
		ID:            b.ID,
		SrcAccountID:  b.SrcAccountID,
		SrcHostID:     b.SrcHostID,
		DstAccountID:  b.DstAccountID,
		DstHostID:     b.DstHostID,
		SrcPrivilege:  b.SrcPrivilege,
		DstPrivilege:  b.DstPrivilege,
		Timestamp:     b.Timestamp.Format(timeLayout),
		SessionID:     b.SessionID,
		HostID:        b.HostID,
		RawSource:     b.RawSource,
		Metadata:      b.Metadata,
		EventCategory: cat,
		Mechanism:     mech,
		SrcNodeID:     b.SrcNodeID(),
		DstNodeID:     b.DstNodeID(),
	}
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// UnmarshalAuthEvent decodes a single JSON auth event into its concrete
// variant, dispatching on event_category. Unknown mechanisms are rejected
// for the resolved category, per spec.
func UnmarshalAuthEvent(data []byte) (AuthEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode auth event: %w", err)
	}

	ts, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("decode auth event timestamp: %w", err)
	}

	base := BaseEvent{
		ID:           w.ID,
		SrcAccountID: w.SrcAccountID,
		SrcHostID:    w.SrcHostID,
		DstAccountID: w.DstAccountID,
		DstHostID:    w.DstHostID,
		SrcPrivilege: w.SrcPrivilege,
		DstPrivilege: w.DstPrivilege,
		Timestamp:    ts,
		SessionID:    w.SessionID,
		HostID:       w.HostID,
		RawSource:    w.RawSource,
		Metadata:     w.Metadata,
	}

	switch w.EventCategory {
	case CategoryAuthentication:
		ev, err := NewAuthenticationEvent(base, w.Mechanism)
		if err != nil {
			return nil, err
		}
		ev.KeytabPath = w.KeytabPath
		ev.Realm = w.Realm
		ev.Principal = w.Principal
		return ev, nil
	case CategorySession:
		ev, err := NewSessionEvent(base, w.Mechanism)
		if err != nil {
			return nil, err
		}
		ev.AuthMethod = w.AuthMethod
		ev.CommandLine = w.CommandLine
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event_category: %q", w.EventCategory)
	}
}
