package auth

import (
	"sort"
	"strings"
)

// NormalizeRoleClaims uppercases, trims, de-duplicates and sorts a role
// claim list so downstream checks compare against a canonical set.
func NormalizeRoleClaims(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))

	for _, role := range roles {
		name := strings.ToUpper(strings.TrimSpace(role))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}

	if len(normalized) == 0 {
		return nil
	}

	sort.Strings(normalized)

	return normalized
}

// ExtractRoleClaims pulls a role list out of a decoded claim map. It
// accepts the flat "roles" shape as well as the nested realm_access and
// resource_access shapes emitted by common identity providers, merging
// every list it finds.
func ExtractRoleClaims(claims map[string]any) []string {
	var roles []string

	roles = append(roles, stringList(claims["roles"])...)

	if realm, ok := claims["realm_access"].(map[string]any); ok {
		roles = append(roles, stringList(realm["roles"])...)
	}

	if resources, ok := claims["resource_access"].(map[string]any); ok {
		for _, entry := range resources {
			client, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			roles = append(roles, stringList(client["roles"])...)
		}
	}

	return NormalizeRoleClaims(roles)
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
