package tools

import "strings"

// APILookupResult is the outcome of an API docs lookup.
type APILookupResult struct {
	APIExists    bool    `json:"api_exists"`
	APIName      string  `json:"api_name,omitempty"`
	Determinism  float64 `json:"determinism"`
	Notes        string  `json:"notes"`
	LookupStatus string  `json:"lookup_status"`
}

// Lookup statuses returned by the tool functions.
const (
	StatusFound          = "found"
	StatusNoMatch        = "no_match"
	StatusNoAPIAvailable = "no_api_available"
	StatusError          = "error"
)

type apiEntry struct {
	keyword     string
	apiName     string
	determinism float64
	description string
}

// Ordered so that multi-keyword descriptions resolve deterministically.
var apiCatalog = []apiEntry{
	{"send email", "Gmail API", 1.0, "Send and manage emails"},
	{"draft email", "Gmail API", 1.0, "Send and manage emails"},
	{"email", "Gmail API", 1.0, "Send and manage emails"},
	{"database", "SQL API", 1.0, "Query and manage relational databases"},
	{"read file", "File System API", 1.0, "Read and write files"},
	{"write file", "File System API", 1.0, "Read and write files"},
	{"fetch", "HTTP API", 0.9, "Make HTTP requests"},
	{"http", "HTTP API", 0.9, "Make HTTP requests"},
	{"request", "HTTP API", 0.9, "Make HTTP requests"},
}

type noAutomationEntry struct {
	keyword     string
	determinism float64
}

// Any sign of required human judgment overrides an apparent API match,
// so these are checked before the catalog.
var noAutomationKeywords = []noAutomationEntry{
	{"human", 0.1},
	{"manual", 0.1},
	{"review", 0.2},
	{"approve", 0.3},
	{"validate", 0.4},
	{"check", 0.5},
}

// LookupAPIDocs checks whether a known API can automate the described step.
// Pure and synchronous; consults fixed tables only.
func LookupAPIDocs(stepDescription string) APILookupResult {
	if strings.TrimSpace(stepDescription) == "" {
		return APILookupResult{
			Determinism:  0.0,
			Notes:        "Invalid step description provided",
			LookupStatus: StatusError,
		}
	}

	desc := strings.ToLower(strings.TrimSpace(stepDescription))

	for _, entry := range noAutomationKeywords {
		if strings.Contains(desc, entry.keyword) {
			return APILookupResult{
				Determinism:  entry.determinism,
				Notes:        "Step requires " + entry.keyword + " which typically cannot be fully automated",
				LookupStatus: StatusNoAPIAvailable,
			}
		}
	}

	for _, entry := range apiCatalog {
		if strings.Contains(desc, entry.keyword) {
			return APILookupResult{
				APIExists:    true,
				APIName:      entry.apiName,
				Determinism:  entry.determinism,
				Notes:        entry.description,
				LookupStatus: StatusFound,
			}
		}
	}

	return APILookupResult{
		Determinism:  0.5,
		Notes:        "No specific API found. May require custom integration or manual review.",
		LookupStatus: StatusNoMatch,
	}
}
