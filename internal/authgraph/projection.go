package authgraph

import "time"

// BuildNodeProjections derives the richer AccountNode/HostNode read-models
// from an event sequence — a secondary projection alongside BuildGraph,
// served by the GET /accounts/{id} and GET /hosts/{id} endpoints. It does not
// feed the core detectors, which only ever see DirectedGraph's bare
// (privilege_tier, host_id) node attributes.
func BuildNodeProjections(events []AuthEvent) (map[string]*AccountNode, map[string]*HostNode) {
	accounts := make(map[string]*AccountNode)
	hosts := make(map[string]*HostNode)

	for _, event := range events {
		base := event.Base()
		upsertAccount(accounts, base.SrcAccountID, base.SrcPrivilege, base.Timestamp)
		upsertAccount(accounts, base.DstAccountID, base.DstPrivilege, base.Timestamp)
		upsertHost(hosts, base.SrcHostID, base.SrcPrivilege, base.Timestamp)
		upsertHost(hosts, base.DstHostID, base.DstPrivilege, base.Timestamp)
	}

	return accounts, hosts
}

func upsertAccount(accounts map[string]*AccountNode, id string, privilege float64, ts time.Time) {
	if id == "" {
		return
	}
	acct, ok := accounts[id]
	if !ok {
		accounts[id] = &AccountNode{
			ID:            id,
			Environment:   EnvironmentProd,
			PrivilegeTier: privilege,
			CreatedAt:     ts,
			UpdatedAt:     ts,
		}
		return
	}
	if privilege > acct.PrivilegeTier {
		acct.PrivilegeTier = privilege
	}
	if ts.After(acct.UpdatedAt) {
		acct.UpdatedAt = ts
	}
}

func upsertHost(hosts map[string]*HostNode, id string, privilege float64, ts time.Time) {
	if id == "" {
		return
	}
	host, ok := hosts[id]
	if !ok {
		hosts[id] = &HostNode{
			ID:            id,
			Environment:   EnvironmentProd,
			PrivilegeTier: privilege,
			CreatedAt:     ts,
			UpdatedAt:     ts,
		}
		return
	}
	if privilege > host.PrivilegeTier {
		host.PrivilegeTier = privilege
	}
	if ts.After(host.UpdatedAt) {
		host.UpdatedAt = ts
	}
}
