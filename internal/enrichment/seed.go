package enrichment

// DefaultVaultSeed and DefaultCriticalAccountsSeed are the stub enrichment
// data returned until a real vault API / CMDB query replaces them —
// matching the reference implementation's stub load() bodies exactly, so a
// fresh deployment's keytab-smuggling detection behaves the same way out
// of the box.
func DefaultVaultSeed() map[string][]string {
	return map[string][]string{
		"host:web-prod-01": {"/etc/krb5.keytab", "/etc/http.keytab"},
		"host:db-prod-01":  {"/etc/krb5.keytab", "/var/lib/postgresql/pg.keytab"},
		"host:bastion-01":  {"/etc/krb5.keytab"},
		"host:app-dev-02":  {"/etc/krb5.keytab"},
	}
}

func DefaultCriticalAccountsSeed() map[string]CriticalAccount {
	return map[string]CriticalAccount{
		"account:svc-deploy": {
			AccountID: "account:svc-deploy", AccountType: AccountTypeService, IsCritical: true,
			AllowedHosts: []string{"host:web-prod-01"}, SensitivityScore: 0.9,
		},
		"account:root": {
			AccountID: "account:root", AccountType: AccountTypeRoot, IsCritical: true,
			AllowedHosts: nil, SensitivityScore: 1.0,
		},
		"account:alice-admin": {
			AccountID: "account:alice-admin", AccountType: AccountTypeHuman, IsCritical: true,
			AllowedHosts: []string{"host:bastion-01", "host:app-dev-02"}, SensitivityScore: 0.7,
		},
	}
}
