package authgraph

import "time"

// Environment classifies where an AccountNode/HostNode lives. Supplements
// the core graph's bare node attributes with the richer read-model the
// original system's model/node.py carried; derived from the event log by
// BuildNodeProjections, not consumed by the detectors themselves.
type Environment string

const (
	EnvironmentProd    Environment = "prod"
	EnvironmentDev     Environment = "dev"
	EnvironmentStaging Environment = "staging"
)

// AccountNode is a read-model describing a user/service account, richer
// than the bare privilege_tier the graph tracks per node.
type AccountNode struct {
	ID                string      `json:"id"` // e.g. "account:jsmith"
	Username          string      `json:"username"`
	Domain            string      `json:"domain,omitempty"`
	Environment       Environment `json:"environment"`
	LinkedResourceIDs []string    `json:"linked_resource_ids,omitempty"`
	PrivilegeTier     float64     `json:"privilege_tier"`
	SensitivityScore  float64     `json:"sensitivity_score"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// HostNode is a read-model describing a machine/host.
type HostNode struct {
	ID               string      `json:"id"` // e.g. "host:web-prod-01"
	Hostname         string      `json:"hostname"`
	Environment      Environment `json:"environment"`
	PrivilegeTier    float64     `json:"privilege_tier"`
	SensitivityScore float64     `json:"sensitivity_score"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
