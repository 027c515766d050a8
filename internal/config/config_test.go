package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, "product-image", cfg.StorageBucket)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.SearchEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Elasticsearch(t *testing.T) {
	setEnvs(t, map[string]string{
		"ELASTICSEARCH_URLS":  "http://es-1:9200,http://es-2:9200",
		"ELASTICSEARCH_INDEX": "catalog_v2",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.SearchEnabled())
	assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.ElasticsearchURLs)
	assert.Equal(t, "catalog_v2", cfg.ElasticsearchIndex)
}

func TestLoad_KafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}

func TestLoad_UnknownStorageBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
}

func TestLoad_ObjectStoreNeedsKey(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", StorageObjectStore)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_API_KEY")

	t.Setenv("STORAGE_API_KEY", "service-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageObjectStore, cfg.StorageBackend)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	setEnvs(t, map[string]string{
		"HTTP_PORT":        "0",
		"MAX_UPLOAD_BYTES": "-1",
	})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")
}

func TestConfig_Postgres(t *testing.T) {
	cfg := &Config{PostgresHost: "db", PostgresPort: 5433, PostgresUser: "u", PostgresPass: "p", PostgresDB: "shop", PostgresSSL: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/shop?sslmode=require", cfg.Postgres().DSN())

	cfg.DatabaseURL = "postgres://hosted/db"
	assert.Equal(t, "postgres://hosted/db", cfg.Postgres().DSN())
}

func TestConfig_Tracing(t *testing.T) {
	cfg := &Config{Environment: "staging", OTelEnabled: true, OTelEndpoint: "otel:4318", OTelSampleRate: 0.25}
	tc := cfg.Tracing()
	assert.Equal(t, ServiceName, tc.ServiceName)
	assert.Equal(t, "staging", tc.Environment)
	assert.True(t, tc.Enabled)
	assert.Equal(t, 0.25, tc.SampleRate)
}
