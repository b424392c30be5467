package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: forms-test
workers:
  validate-profile:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "forms-test", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "ru", cfg.Form.Locale)
	assert.Equal(t, SinkLog, cfg.Sink.Kind)
	assert.Equal(t, "profiles", cfg.Sink.Postgres.Table)
	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.APIs.Posts.BaseURL)
	assert.Equal(t, 1, cfg.APIs.Posts.UserID)
	assert.Equal(t, time.Minute, GetDuration(cfg.Cache.PostsTTL))

	w := GetWorkerConfig(cfg, "validate-profile")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
	assert.True(t, IsWorkerEnabled(cfg, "unknown.worker"))
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("POSTS_API_URL", "http://posts.example.com")
	path := writeConfig(t, `
apis:
  posts:
    base_url: "${POSTS_API_URL}"
    timeout: 2500
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://posts.example.com", cfg.APIs.Posts.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, GetDuration(cfg.APIs.Posts.Timeout))
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Setenv("PROFILE_SINK_URL", "")
	t.Setenv("DB_USER", "")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "http sink without url",
			body: `
sink:
  kind: http
`,
			wantErr: "sink.http.url",
		},
		{
			name: "unknown sink kind",
			body: `
sink:
  kind: carrier-pigeon
`,
			wantErr: "sink.kind",
		},
		{
			name: "unsupported locale",
			body: `
form:
  locale: de
`,
			wantErr: "form.locale",
		},
		{
			name: "postgres sink without host",
			body: `
sink:
  kind: postgres
`,
			wantErr: "database.postgres.host",
		},
		{
			name: "zeebe sink without broker",
			body: `
sink:
  kind: zeebe
`,
			wantErr: "camunda.broker_address",
		},
		{
			name: "cache without redis",
			body: `
cache:
  enabled: true
`,
			wantErr: "database.redis.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "forms", Password: "secret", Database: "profiles", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=forms password=secret dbname=profiles sslmode=disable", p.GetDSN())
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	assert.Equal(t, "http://a:9200", ElasticsearchConfig{Addresses: []string{"http://a:9200"}}.GetURL())
	assert.Equal(t, "http://b:9200", ElasticsearchConfig{URL: "http://b:9200", Addresses: []string{"http://a:9200"}}.GetURL())
	assert.Empty(t, ElasticsearchConfig{}.GetURL())
}
