package tools

import "strings"

// ComplianceResult is the outcome of a compliance rule lookup.
type ComplianceResult struct {
	ApplicableRules []string `json:"applicable_rules"`
	RequiresAudit   bool     `json:"requires_audit"`
	HITLRequired    bool     `json:"hitl_required"`
	LookupStatus    string   `json:"lookup_status"`
	Notes           string   `json:"notes,omitempty"`
}

type complianceKey struct {
	riskLevel string
	domain    string
}

type complianceEntry struct {
	rules         []string
	requiresAudit bool
	hitlRequired  bool
}

// Non-CRITICAL table. CRITICAL is special-cased in GetComplianceRules and
// never reaches this lookup.
var complianceTable = map[complianceKey]complianceEntry{
	{"HIGH", "financial"}:  {rules: []string{"PCI-DSS"}, requiresAudit: true},
	{"HIGH", "healthcare"}: {rules: []string{"HIPAA"}, hitlRequired: true},
	{"MEDIUM", "general"}:  {rules: []string{}},
	{"LOW", "general"}:     {rules: []string{}},
}

var criticalRulesByDomain = map[string][]string{
	"financial":  {"SOX", "PCI-DSS"},
	"healthcare": {"HIPAA", "HITECH"},
}

// GetComplianceRules returns the compliance requirements for a risk level and
// domain. CRITICAL always forces audit and human-in-the-loop regardless of
// domain; other levels consult the table with exact match, then a wildcard
// domain, then a universal default of no rules.
func GetComplianceRules(riskLevel, domain string) ComplianceResult {
	if strings.TrimSpace(riskLevel) == "" {
		return ComplianceResult{
			ApplicableRules: []string{},
			LookupStatus:    StatusError,
			Notes:           "Invalid risk level provided",
		}
	}
	if strings.TrimSpace(domain) == "" {
		return ComplianceResult{
			ApplicableRules: []string{},
			LookupStatus:    StatusError,
			Notes:           "Invalid domain provided",
		}
	}

	risk := strings.ToUpper(strings.TrimSpace(riskLevel))
	dom := strings.ToLower(strings.TrimSpace(domain))

	if risk == "CRITICAL" {
		rules, ok := criticalRulesByDomain[dom]
		if !ok {
			rules = []string{"General Compliance Review Required"}
		}
		return ComplianceResult{
			ApplicableRules: rules,
			RequiresAudit:   true,
			HITLRequired:    true,
			LookupStatus:    StatusFound,
			Notes:           "CRITICAL risk requires audit and human review",
		}
	}

	if entry, ok := complianceTable[complianceKey{risk, dom}]; ok {
		return ComplianceResult{
			ApplicableRules: entry.rules,
			RequiresAudit:   entry.requiresAudit,
			HITLRequired:    entry.hitlRequired,
			LookupStatus:    StatusFound,
		}
	}

	if entry, ok := complianceTable[complianceKey{risk, "*"}]; ok {
		return ComplianceResult{
			ApplicableRules: entry.rules,
			RequiresAudit:   entry.requiresAudit,
			HITLRequired:    entry.hitlRequired,
			LookupStatus:    StatusFound,
			Notes:           "Using generic rules for this risk level",
		}
	}

	return ComplianceResult{
		ApplicableRules: []string{},
		LookupStatus:    StatusNoMatch,
		Notes:           "No specific rules found for this risk/domain combination",
	}
}
