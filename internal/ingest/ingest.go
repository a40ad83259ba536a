// Package ingest defines the canonicalization seam between source-specific
// telemetry and the detection engine. A Normalizer is responsible for
// producing confirmed authgraph.AuthEvent values only — failed auth
// attempts must never reach the engine.
package ingest

import "github.com/BrizoSec/privesc-detector/internal/authgraph"

// Normalizer fetches and canonicalizes events from one telemetry source.
type Normalizer interface {
	// RawSource identifies which authgraph.RawSource this normalizer produces.
	RawSource() authgraph.RawSource
	// FetchEvents returns the next batch of canonical, confirmed events.
	FetchEvents() ([]authgraph.AuthEvent, error)
}
