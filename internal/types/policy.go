package types

// Severity is a policy severity level.
type Severity string

const (
	SeverityCritical      Severity = "critical"
	SeverityHigh          Severity = "high"
	SeverityMedium        Severity = "medium"
	SeverityLow           Severity = "low"
	SeverityInformational Severity = "informational"
)

// Policy is a named rule whose violations produce alerts.
type Policy struct {
	PolicyID    string   `json:"policyId"`
	Name        string   `json:"name"`
	PolicyType  string   `json:"policyType,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
	Description string   `json:"description,omitempty"`
}

// PolicyAlertCount is one row of the alert-count-by-policy listing.
type PolicyAlertCount struct {
	AlertCount int    `json:"alertCount"`
	Policy     Policy `json:"policy"`
}

// PolicyNames indexes policies by id for display-name lookups.
type PolicyNames map[string]string

// NewPolicyNames builds the id -> name index. Later duplicates win.
func NewPolicyNames(policies []Policy) PolicyNames {
	names := make(PolicyNames, len(policies))
	for _, p := range policies {
		names[p.PolicyID] = p.Name
	}
	return names
}

// Lookup returns the policy name, or the id itself when the policy is unknown
// or unnamed.
func (n PolicyNames) Lookup(policyID string) string {
	if name, ok := n[policyID]; ok && name != "" {
		return name
	}
	return policyID
}
