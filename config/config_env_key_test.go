package config

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"userName": "gatehouse",
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"auth": map[string]any{
			"signingSecret":     "",
			"accessTokenTtlMs":  0,
			"refreshTokenTtlMs": 0,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_USERNAME", want: "postgres.userName"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "AUTH_SIGNINGSECRET", want: "auth.signingSecret"},
		{envKey: "AUTH_ACCESSTOKENTTLMS", want: "auth.accessTokenTtlMs"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestAuthConfig_Defaults(t *testing.T) {
	var cfg *AuthConfig

	if got := cfg.AccessTokenTTL(); got != DefaultAccessTokenTTL {
		t.Fatalf("AccessTokenTTL() = %v, want %v", got, DefaultAccessTokenTTL)
	}
	if got := cfg.RefreshTokenTTL(); got != DefaultRefreshTokenTTL {
		t.Fatalf("RefreshTokenTTL() = %v, want %v", got, DefaultRefreshTokenTTL)
	}
	if got := cfg.DefaultRoleName(); got != DefaultRoleName {
		t.Fatalf("DefaultRoleName() = %q, want %q", got, DefaultRoleName)
	}
	if got := cfg.StoreOperationTimeout(); got != DefaultStoreTimeout {
		t.Fatalf("StoreOperationTimeout() = %v, want %v", got, DefaultStoreTimeout)
	}
}

func TestAuthConfig_TTLsFromMillis(t *testing.T) {
	cfg := &AuthConfig{
		AccessTokenTTLMs:  3_600_000,
		RefreshTokenTTLMs: 86_400_000,
		DefaultRole:       "guest",
	}

	if got := cfg.AccessTokenTTL(); got != time.Hour {
		t.Fatalf("AccessTokenTTL() = %v, want 1h", got)
	}
	if got := cfg.RefreshTokenTTL(); got != 24*time.Hour {
		t.Fatalf("RefreshTokenTTL() = %v, want 24h", got)
	}
	if got := cfg.DefaultRoleName(); got != "GUEST" {
		t.Fatalf("DefaultRoleName() = %q, want GUEST", got)
	}
}

func TestAuthConfig_SigningKey(t *testing.T) {
	raw := []byte("0123456789abcdef0123456789abcdef")
	cfg := &AuthConfig{SigningSecret: base64.StdEncoding.EncodeToString(raw)}

	key, err := cfg.SigningKey()
	if err != nil {
		t.Fatalf("SigningKey() error: %v", err)
	}
	if string(key) != string(raw) {
		t.Fatalf("SigningKey() decoded %q, want %q", key, raw)
	}

	if _, err := (&AuthConfig{}).SigningKey(); err == nil {
		t.Fatal("SigningKey() with empty secret should fail")
	}
	if _, err := (&AuthConfig{SigningSecret: "not-base64!!"}).SigningKey(); err == nil {
		t.Fatal("SigningKey() with invalid base64 should fail")
	}
}
