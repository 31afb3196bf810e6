package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"store": map[string]any{
			"maxBytes": 0,
		},
		"retention": map[string]any{
			"autoPruneAge": "48h",
		},
		"admin": map[string]any{
			"passwordHash": "",
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "STORE_MAXBYTES", want: "store.maxBytes"},
		{envKey: "RETENTION_AUTOPRUNEAGE", want: "retention.autoPruneAge"},
		{envKey: "ADMIN_PASSWORDHASH", want: "admin.passwordHash"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
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
