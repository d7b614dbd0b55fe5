package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metarepo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "metarepo", cfg.Server.Name)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "metarepo.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "fs", cfg.Archive.Driver)
	assert.Equal(t, "us-east-1", cfg.Archive.Region)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Cohorts)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  name: metarepo-test
  listen_addr: ":9090"
collection:
  id: collection-1
storage:
  driver: sqlite
  sqlite_path: /tmp/test.db
archive:
  driver: memory
log:
  level: debug
cohorts:
  - name: production
  - name: staging
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "metarepo-test", cfg.Server.Name)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "collection-1", cfg.Collection.ID)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "memory", cfg.Archive.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Cohorts, 2)
	assert.Equal(t, "production", cfg.Cohorts[0].Name)
}

func TestFileSettingsOverlayDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  name: metarepo-test
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "fs", cfg.Archive.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Local Metadata Collection", cfg.Collection.Name)
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown storage driver",
			content: "storage:\n  driver: cassandra\n",
			wantErr: "unknown storage driver",
		},
		{
			name:    "unknown archive driver",
			content: "archive:\n  driver: tape\n",
			wantErr: "unknown archive driver",
		},
		{
			name:    "s3 without bucket",
			content: "archive:\n  driver: s3\n",
			wantErr: "archive.bucket is required",
		},
		{
			name:    "empty server name",
			content: "server:\n  name: \"\"\n",
			wantErr: "server.name is required",
		},
		{
			name:    "invalid log level",
			content: "log:\n  level: loud\n",
			wantErr: "invalid log level",
		},
		{
			name:    "unnamed cohort",
			content: "cohorts:\n  - name: production\n  - name: \"\"\n",
			wantErr: "cohorts[1].name is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestS3ArchiveConfig(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  driver: s3
  bucket: metarepo-archives
  region: eu-west-1
  endpoint: http://localhost:9000
  path_style: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "metarepo-archives", cfg.Archive.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Archive.Region)
	assert.Equal(t, "http://localhost:9000", cfg.Archive.Endpoint)
	assert.True(t, cfg.Archive.PathStyle)
}
