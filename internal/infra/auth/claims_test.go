package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoleClaims(t *testing.T) {
	assert.Nil(t, NormalizeRoleClaims(nil))
	assert.Nil(t, NormalizeRoleClaims([]string{"", "   "}))

	got := NormalizeRoleClaims([]string{" guest ", "ADMIN", "admin", "Guest"})
	assert.Equal(t, []string{"ADMIN", "GUEST"}, got)
}

func TestExtractRoleClaims_FlatShape(t *testing.T) {
	claims := map[string]any{
		"roles": []any{"guest", "admin"},
	}

	assert.Equal(t, []string{"ADMIN", "GUEST"}, ExtractRoleClaims(claims))
}

func TestExtractRoleClaims_RealmAccessShape(t *testing.T) {
	claims := map[string]any{
		"realm_access": map[string]any{
			"roles": []any{"admin"},
		},
	}

	assert.Equal(t, []string{"ADMIN"}, ExtractRoleClaims(claims))
}

func TestExtractRoleClaims_ResourceAccessShape(t *testing.T) {
	claims := map[string]any{
		"resource_access": map[string]any{
			"gatehouse": map[string]any{
				"roles": []any{"auditor"},
			},
			"other-client": map[string]any{
				"roles": []any{"admin"},
			},
		},
	}

	assert.Equal(t, []string{"ADMIN", "AUDITOR"}, ExtractRoleClaims(claims))
}

func TestExtractRoleClaims_MergesAllShapes(t *testing.T) {
	claims := map[string]any{
		"roles": []string{"guest"},
		"realm_access": map[string]any{
			"roles": []any{"admin"},
		},
	}

	assert.Equal(t, []string{"ADMIN", "GUEST"}, ExtractRoleClaims(claims))
}

func TestExtractRoleClaims_NoRoles(t *testing.T) {
	assert.Nil(t, ExtractRoleClaims(map[string]any{"sub": "abc"}))
}
