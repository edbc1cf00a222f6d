package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"server_address": ":3100",
	"log_level": "debug",
	"database_dsn": "json-dsn",
	"attribute_name": "alcada",
	"api_docs": "static"
}`

const testYAML = `
server_address: ":3200"
attribute_name: alcada
id_policy: monotonic
trusted_subnet: 10.0.0.0/8
`

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0644))
	return fileName
}

func TestDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "", cfg.GRPCRunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "edat", cfg.AttributeName)
	assert.Equal(t, "length", cfg.IDPolicy)
	assert.Equal(t, APIDocsGenerated, cfg.APIDocs)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
	assert.False(t, cfg.SkipSeed)
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.json", testJSON))

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3100", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.Equal(t, "alcada", cfg.AttributeName)
	assert.Equal(t, APIDocsStatic, cfg.APIDocs)
}

func TestConfigYAMLFile(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.yaml", testYAML))

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3200", cfg.RunAddr)
	assert.Equal(t, "alcada", cfg.AttributeName)
	assert.Equal(t, "monotonic", cfg.IDPolicy)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.json", testJSON))
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("ATTRIBUTE_NAME", "pes")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr) // env overrides json
	assert.Equal(t, "pes", cfg.AttributeName)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigPriorityAllSources(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.json", testJSON))
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := New(WithArgs([]string{
		"-a", ":6000",
		"-id-policy", "monotonic",
		"-skip-seed",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr) // CLI > ENV > JSON
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "monotonic", cfg.IDPolicy)
	assert.True(t, cfg.SkipSeed)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigFileFromFlag(t *testing.T) {
	fileName := writeTempConfig(t, "config.yml", testYAML)

	cfg, err := New(WithArgs([]string{"-c", fileName}))
	require.NoError(t, err)

	assert.Equal(t, ":3200", cfg.RunAddr)
	assert.Equal(t, fileName, cfg.ConfigFile)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("GRPC_SERVER_ADDRESS", ":7001")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_CONNECTION_TIMEOUT", "3s")
	t.Setenv("API_DOCS", "none")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, ":7001", cfg.GRPCRunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.DBConnectionTimeout)
	assert.Equal(t, APIDocsNone, cfg.APIDocs)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "attribute clashes with id", key: "ATTRIBUTE_NAME", value: "id"},
		{name: "attribute with spaces", key: "ATTRIBUTE_NAME", value: "my attr"},
		{name: "id policy", key: "ID_POLICY", value: "random"},
		{name: "docs mode", key: "API_DOCS", value: "swagger"},
		{name: "subnet", key: "TRUSTED_SUBNET", value: "10.0.0.0"},
		{name: "address", key: "SERVER_ADDRESS", value: "nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}

func TestConfigUnsupportedFile(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.toml", `server_address = ":1"`))

	_, err := New(WithDisableFlagsParsing(true))
	assert.ErrorIs(t, err, errUnsupportedConfigFile)
}
