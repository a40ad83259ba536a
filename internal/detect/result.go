// Package detect implements the four independent detection algorithms:
// privilege escalation, auth burst, auth chain, and keytab smuggling. Every
// detector is a pure function over its inputs (auth burst additionally
// mutates its own window state); none of them perform I/O or raise on
// legitimate input — "no result" is returned for every non-match case.
package detect

import "github.com/BrizoSec/privesc-detector/internal/authgraph"

// Result is the internal output of every detector, converted to an
// authgraph.Alert by the dispatcher.
type Result struct {
	DetectionType authgraph.DetectionType
	Severity      authgraph.Severity
	EdgeIDs       []authgraph.EventID
	NodeIDs       []authgraph.NodeID
	HostID        string
	Description   string
	Metadata      map[string]any
}
