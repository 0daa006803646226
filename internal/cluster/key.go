// Package cluster derives the deterministic key that groups complaints with the
// same category and location.
package cluster

import (
	"strings"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/models"
)

// Normalize trims, lowercases and collapses whitespace runs. Blank
// input maps to "unknown". Normalize(Normalize(s)) equals
// Normalize(s) for every s.
func Normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return config.UnknownLocation
	}
	return strings.Join(fields, " ")
}

// NormalizeCategory trims the category and falls back to "Other". Case is kept.
func NormalizeCategory(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return config.DefaultCategory
	}
	return c
}

// DeriveKey returns "category|village|district|state" with the location parts
// normalized. Equivalent inputs always give byte-identical keys.
func DeriveKey(category string, loc models.Location) string {
	return strings.Join([]string{
		NormalizeCategory(category),
		Normalize(loc.Village),
		Normalize(loc.District),
		Normalize(loc.State),
	}, config.ClusterKeyDelimiter)
}
