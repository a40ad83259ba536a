// Package unixauth stubs a Unix auth-log ingest adapter (auth.log / PAM /
// kinit). It returns a fixed set of mock confirmed events simulating what a
// real file-tail or syslog consumer would produce after normalization. All
// events are confirmed outcomes — failed attempts are never ingested.
//
// Replace Normalizer.FetchEvents with a real syslog consumer when
// deploying; the return contract must be preserved.
package unixauth

import (
	"time"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
)

// Normalizer is the unix_auth ingest.Normalizer.
type Normalizer struct{}

func New() Normalizer { return Normalizer{} }

func (Normalizer) RawSource() authgraph.RawSource { return authgraph.SourceUnixAuth }

func (Normalizer) FetchEvents() ([]authgraph.AuthEvent, error) {
	now := time.Now().UTC()

	sshLogin, err := authgraph.NewSessionEvent(authgraph.BaseEvent{
		SrcAccountID: "account:alice", SrcHostID: "host:alice-workstation",
		DstAccountID: "account:alice", DstHostID: "host:app-dev-02",
		SrcPrivilege: 0.1, DstPrivilege: 0.3,
		HostID:    "host:app-dev-02",
		RawSource: authgraph.SourceUnixAuth,
		Timestamp: now,
		Metadata: map[string]any{
			"log_line": "sshd[1234]: Accepted publickey for alice from 10.0.0.5",
		},
	}, authgraph.MechanismSSH)
	if err != nil {
		return nil, err
	}
	sshLogin.AuthMethod = "publickey"

	kinit, err := authgraph.NewAuthenticationEvent(authgraph.BaseEvent{
		SrcAccountID: "account:alice", SrcHostID: "host:app-dev-02",
		DstAccountID: "account:alice-admin", DstHostID: "host:app-dev-02",
		SrcPrivilege: 0.1, DstPrivilege: 0.6,
		HostID:    "host:app-dev-02",
		RawSource: authgraph.SourceUnixAuth,
		Timestamp: now,
		Metadata: map[string]any{
			"log_line": "kinit[5678]: TGT obtained for alice-admin@REALM.CORP",
		},
	}, authgraph.MechanismKinit)
	if err != nil {
		return nil, err
	}
	kinit.KeytabPath = "/tmp/smuggled.keytab"
	kinit.Realm = "REALM.CORP"
	kinit.Principal = "alice-admin@REALM.CORP"

	bastionHop, err := authgraph.NewSessionEvent(authgraph.BaseEvent{
		SrcAccountID: "account:alice-admin", SrcHostID: "host:app-dev-02",
		DstAccountID: "account:alice-admin", DstHostID: "host:bastion-01",
		SrcPrivilege: 0.6, DstPrivilege: 0.8,
		HostID:    "host:bastion-01",
		RawSource: authgraph.SourceUnixAuth,
		Timestamp: now,
		Metadata: map[string]any{
			"log_line": "sshd[9012]: Accepted gssapi-with-mic for alice-admin",
		},
	}, authgraph.MechanismSSH)
	if err != nil {
		return nil, err
	}
	bastionHop.AuthMethod = "gssapi-with-mic"

	return []authgraph.AuthEvent{sshLogin, kinit, bastionHop}, nil
}
