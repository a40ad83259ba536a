package enrichment

// AccountType classifies a critical account.
type AccountType string

const (
	AccountTypeHuman   AccountType = "human"
	AccountTypeService AccountType = "service"
	AccountTypeRoot    AccountType = "root"
	AccountTypeShared  AccountType = "shared"
)

// CriticalAccount describes one account flagged for elevated alert
// severity.
type CriticalAccount struct {
	AccountID         string
	AccountType       AccountType
	IsCritical        bool
	AllowedHosts      []string // empty = unrestricted
	SensitivityScore  float64  // 0.0-1.0
}

// CriticalAccountsCache is a typed, read-only wrapper around account_id →
// attributes.
type CriticalAccountsCache struct {
	accounts map[string]CriticalAccount
}

// NewCriticalAccountsCache builds a cache from a raw account_id → attrs map.
func NewCriticalAccountsCache(raw map[string]CriticalAccount) CriticalAccountsCache {
	return CriticalAccountsCache{accounts: raw}
}

// Get returns the account's attributes, and whether it was found.
func (c CriticalAccountsCache) Get(accountID string) (CriticalAccount, bool) {
	acct, ok := c.accounts[accountID]
	return acct, ok
}

// IsCritical reports whether accountID is flagged critical. Unknown
// accounts are never critical.
func (c CriticalAccountsCache) IsCritical(accountID string) bool {
	acct, ok := c.accounts[accountID]
	return ok && acct.IsCritical
}

// AccountCount returns the number of known accounts — used by
// GET /enrichment/status.
func (c CriticalAccountsCache) AccountCount() int { return len(c.accounts) }

// CriticalAccountsStore loads the raw account data backing a
// CriticalAccountsCache.
type CriticalAccountsStore interface {
	Load() (map[string]CriticalAccount, error)
}

// StaticCriticalAccountsStore returns a fixed snapshot.
type StaticCriticalAccountsStore struct {
	Data map[string]CriticalAccount
}

func (s StaticCriticalAccountsStore) Load() (map[string]CriticalAccount, error) {
	return s.Data, nil
}
