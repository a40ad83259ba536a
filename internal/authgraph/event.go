// Package authgraph holds the confirmed-auth-event data model and the pure
// graph builder that turns an event sequence into a directed auth graph.
package authgraph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventID uniquely identifies an ingested AuthEvent.
type EventID = string

// AlertID uniquely identifies a fired Alert.
type AlertID = string

// NodeID is the compound "{account_id}|{host_id}" identity of a graph node.
type NodeID = string

// EventCategory discriminates the AuthEvent union.
type EventCategory string

const (
	CategoryAuthentication EventCategory = "authentication"
	CategorySession        EventCategory = "session"
)

// Mechanism is the closed set of auth/session mechanisms, partitioned by
// EventCategory: authentication events use kinit/oidc/certificate/fido2,
// session events use ssh/su/sudo/rdp/winrm.
type Mechanism string

const (
	MechanismKinit       Mechanism = "kinit"
	MechanismOIDC        Mechanism = "oidc"
	MechanismCertificate Mechanism = "certificate"
	MechanismFIDO2       Mechanism = "fido2"

	MechanismSSH   Mechanism = "ssh"
	MechanismSu    Mechanism = "su"
	MechanismSudo  Mechanism = "sudo"
	MechanismRDP   Mechanism = "rdp"
	MechanismWinRM Mechanism = "winrm"
)

var authenticationMechanisms = map[Mechanism]bool{
	MechanismKinit:       true,
	MechanismOIDC:        true,
	MechanismCertificate: true,
	MechanismFIDO2:       true,
}

var sessionMechanisms = map[Mechanism]bool{
	MechanismSSH:   true,
	MechanismSu:    true,
	MechanismSudo:  true,
	MechanismRDP:   true,
	MechanismWinRM: true,
}

// RawSource identifies the telemetry source an event was normalized from.
type RawSource string

const (
	SourceCrowdstrike RawSource = "crowdstrike"
	SourceUnixAuth    RawSource = "unix_auth"
)

// NewEventID mints a fresh event identifier. Exported so ingest adapters and
// tests can construct canonical events without reaching into uuid directly.
func NewEventID() EventID {
	return uuid.New().String()
}

// BaseEvent carries the fields shared by every confirmed auth event. Every
// event ingested represents a confirmed outcome; failed attempts must never
// be constructed as a BaseEvent in the first place (see NewAuthenticationEvent
// / NewSessionEvent validation).
type BaseEvent struct {
	ID            EventID
	SrcAccountID  string
	SrcHostID     string
	DstAccountID  string
	DstHostID     string
	SrcPrivilege  float64
	DstPrivilege  float64
	Timestamp     time.Time
	SessionID     string // optional, empty if absent
	HostID        string // host that recorded the event
	RawSource     RawSource
	Metadata      map[string]any
}

// SrcNodeID is the derived compound node identity "{src_account_id}|{src_host_id}".
func (e BaseEvent) SrcNodeID() NodeID {
	return e.SrcAccountID + "|" + e.SrcHostID
}

// DstNodeID is the derived compound node identity "{dst_account_id}|{dst_host_id}".
func (e BaseEvent) DstNodeID() NodeID {
	return e.DstAccountID + "|" + e.DstHostID
}

func (e BaseEvent) validate() error {
	if e.SrcPrivilege < 0 || e.SrcPrivilege > 1 {
		return fmt.Errorf("src_privilege out of range [0,1]: %v", e.SrcPrivilege)
	}
	if e.DstPrivilege < 0 || e.DstPrivilege > 1 {
		return fmt.Errorf("dst_privilege out of range [0,1]: %v", e.DstPrivilege)
	}
	if e.SrcAccountID == "" || e.SrcHostID == "" || e.DstAccountID == "" || e.DstHostID == "" {
		return fmt.Errorf("account/host ids must be non-empty")
	}
	switch e.RawSource {
	case SourceCrowdstrike, SourceUnixAuth:
	default:
		return fmt.Errorf("unknown raw_source: %q", e.RawSource)
	}
	return nil
}

// AuthEvent is the discriminated union of AuthenticationEvent and
// SessionEvent. Detection code that does not care about the concrete
// variant should take this interface.
type AuthEvent interface {
	EventID() EventID
	Category() EventCategory
	MechanismValue() Mechanism
	Base() BaseEvent
	SrcNodeID() NodeID
	DstNodeID() NodeID
}

// AuthenticationEvent is a confirmed credential acquisition event
// (kinit, OIDC, certificate, fido2).
type AuthenticationEvent struct {
	BaseEvent
	Mechanism  Mechanism
	KeytabPath string // present when a keytab was used
	Realm      string
	Principal  string
}

// NewAuthenticationEvent constructs and validates an AuthenticationEvent,
// rejecting unknown mechanisms and out-of-range privilege values. Callers
// (ingest adapters) MUST only ever call this for confirmed outcomes.
func NewAuthenticationEvent(base BaseEvent, mechanism Mechanism) (*AuthenticationEvent, error) {
	if !authenticationMechanisms[mechanism] {
		return nil, fmt.Errorf("unknown authentication mechanism: %q", mechanism)
	}
	if err := base.validate(); err != nil {
		return nil, err
	}
	if base.ID == "" {
		base.ID = NewEventID()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now().UTC()
	}
	return &AuthenticationEvent{BaseEvent: base, Mechanism: mechanism}, nil
}

func (e *AuthenticationEvent) EventID() EventID          { return e.ID }
func (e *AuthenticationEvent) Category() EventCategory    { return CategoryAuthentication }
func (e *AuthenticationEvent) MechanismValue() Mechanism  { return e.Mechanism }
func (e *AuthenticationEvent) Base() BaseEvent            { return e.BaseEvent }
func (e *AuthenticationEvent) SrcNodeID() NodeID          { return e.BaseEvent.SrcNodeID() }
func (e *AuthenticationEvent) DstNodeID() NodeID          { return e.BaseEvent.DstNodeID() }

// SessionEvent is a confirmed session establishment event
// (ssh, su, sudo, rdp, winrm).
type SessionEvent struct {
	BaseEvent
	Mechanism   Mechanism
	AuthMethod  string // publickey, gssapi, password
	CommandLine string // populated for sudo
}

// NewSessionEvent constructs and validates a SessionEvent.
func NewSessionEvent(base BaseEvent, mechanism Mechanism) (*SessionEvent, error) {
	if !sessionMechanisms[mechanism] {
		return nil, fmt.Errorf("unknown session mechanism: %q", mechanism)
	}
	if err := base.validate(); err != nil {
		return nil, err
	}
	if base.ID == "" {
		base.ID = NewEventID()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now().UTC()
	}
	return &SessionEvent{BaseEvent: base, Mechanism: mechanism}, nil
}

func (e *SessionEvent) EventID() EventID         { return e.ID }
func (e *SessionEvent) Category() EventCategory   { return CategorySession }
func (e *SessionEvent) MechanismValue() Mechanism { return e.Mechanism }
func (e *SessionEvent) Base() BaseEvent           { return e.BaseEvent }
func (e *SessionEvent) SrcNodeID() NodeID         { return e.BaseEvent.SrcNodeID() }
func (e *SessionEvent) DstNodeID() NodeID         { return e.BaseEvent.DstNodeID() }
