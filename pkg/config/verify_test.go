package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Sources = []string{"https://example.com/feed.xml"}
	return cfg
}

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		require.NoError(t, VerifyAgainstEmbeddedSchema(validConfig()))
	})

	t.Run("missing listen", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Listen = ""
		err := VerifyAgainstEmbeddedSchema(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.listen is required")
	})

	t.Run("missing timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Timeout = 0
		err := VerifyAgainstEmbeddedSchema(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.timeout is required")
	})

	t.Run("missing dsn", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.DSN = ""
		require.ErrorContains(t, VerifyAgainstEmbeddedSchema(cfg), "database.dsn is required")
	})
}

func TestVerify_SchemaDrift(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(embeddedSchema), &doc))
	props := doc["$defs"].(map[string]any)["Config"].(map[string]any)["properties"].(map[string]any)
	delete(props, "telegram")
	stale, err := json.Marshal(doc)
	require.NoError(t, err)

	err = verify(validConfig(), string(stale))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sections missing from schema: telegram")

	t.Run("broken schema", func(t *testing.T) {
		require.ErrorContains(t, verify(validConfig(), "{"), "parse embedded schema")
		require.ErrorContains(t, verify(validConfig(), `{"$ref":"#/$defs/Nope"}`), "no root definition")
	})
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	for _, section := range []string{"server", "database", "schedule", "scoring", "matching", "delivery", "sources", "telegram"} {
		assert.Contains(t, string(data), `"`+section+`"`)
	}

	// generated and embedded schemas describe the same sections
	cfg := validConfig()
	cfg.Server.Timeout = 5 * time.Second
	require.NoError(t, verify(cfg, string(data)))
}
