package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"civicvoice/backend/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims and lowercases", in: "  Test Village ", want: "test village"},
		{name: "collapses runs", in: "New \t Delhi\n  East", want: "new delhi east"},
		{name: "empty", in: "", want: "unknown"},
		{name: "whitespace only", in: " \t\n ", want: "unknown"},
		{name: "already normal", in: "rampur", want: "rampur"},
		{name: "unicode", in: "  रामपुर  गांव ", want: "रामपुर गांव"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "   ", "A  B", " Mixed CASE\tvalue ", "unknown", "UNKNOWN", "x y"}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey("Water", models.Location{Village: "  Test Village ", District: "Test District", State: "Test State"})
	b := DeriveKey("Water", models.Location{Village: "test village", District: "test district", State: "test state"})

	assert.Equal(t, "Water|test village|test district|test state", a)
	assert.Equal(t, a, b)
}

func TestDeriveKey_EmptyLocation(t *testing.T) {
	assert.Equal(t, "Water|unknown|unknown|unknown", DeriveKey("Water", models.Location{}))
}

func TestDeriveKey_Category(t *testing.T) {
	loc := models.Location{Village: "v", District: "d", State: "s"}

	assert.Equal(t, "Other|v|d|s", DeriveKey("", loc))
	assert.Equal(t, "Other|v|d|s", DeriveKey("   ", loc))
	assert.Equal(t, "Health|v|d|s", DeriveKey(" Health ", loc))
	assert.NotEqual(t, DeriveKey("health", loc), DeriveKey("Health", loc), "category case is preserved")
}
