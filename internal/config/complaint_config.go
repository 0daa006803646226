package config

import "time"

const (
	// Escalation ladder. A complaint older than the threshold is promoted to the
	// matching level; levels only go up.
	EscalationLevel1After = 3 * 24 * time.Hour
	EscalationLevel2After = 7 * 24 * time.Hour
	EscalationLevel3After = 15 * 24 * time.Hour
	MaxEscalationLevel    = 3

	// Cluster keys
	ClusterKeyDelimiter = "|"
	UnknownLocation     = "unknown"
	DefaultCategory     = "Other"

	// Contact agent
	ContactResultsPerQuery    = 5
	ContactMaxResults         = 8
	ContactResultContentMax   = 1200
	ContactContextMax         = 6000
	ContactFallbackConfidence = 0.4
	ContactRescueBonus        = 0.15
	ContactRescueCap          = 0.85
	ContactNotFound           = "Not found"

	// OTP
	OTPLength      = 6
	OTPMaxAttempts = 5

	// Listing
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Categories is the closed set of complaint categories. Matching is case-sensitive.
var Categories = []string{
	"Infrastructure",
	"Health",
	"Agriculture",
	"Water",
	"Education",
	"Corruption",
	"Other",
}

// IsValidCategory reports whether c is one of Categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// DepartmentSearchHints maps department keywords to extra search terms that
// narrow web results to the right authority.
var DepartmentSearchHints = []struct {
	Keywords []string
	Suffix   string
}{
	{Keywords: []string{"water", "jal", "sewage", "drainage"}, Suffix: "water supply department jal board"},
	{Keywords: []string{"electric", "power", "bijli", "energy"}, Suffix: "electricity board power distribution company"},
	{Keywords: []string{"health", "hospital", "medical", "swasthya"}, Suffix: "health department district hospital CMO"},
	{Keywords: []string{"works", "pwd", "road", "building"}, Suffix: "public works department PWD"},
}
