package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  host: myhost
  port: 5433
  username: myuser
  database: mydb
  app_name: reporting
  auth_method: aws-iam
  aws_region: us-east-1

fetch:
  max_attempts: 10
  limit: "500"
  snapshot_dir: /tmp/snaps

params:
  $REGION: "'us-west'"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "myuser", cfg.Connection.Username)
	assert.Equal(t, "mydb", cfg.Connection.Database)
	assert.Equal(t, "reporting", cfg.Connection.AppName)
	assert.Equal(t, "aws-iam", cfg.Connection.AuthMethod)
	assert.Equal(t, "us-east-1", cfg.Connection.AWSRegion)
	assert.Equal(t, 10, cfg.Fetch.MaxAttempts)
	assert.Equal(t, "500", cfg.Fetch.Limit)
	assert.Equal(t, "/tmp/snaps", cfg.Fetch.SnapshotDir)
	assert.Equal(t, "'us-west'", cfg.Params["$REGION"])
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvUser, "envuser")
	t.Setenv(EnvPassword, "envpass")
	t.Setenv(EnvHost, "envhost")
	t.Setenv(EnvPort, "6543")
	t.Setenv(EnvName, "envdb")

	env, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, EnvConfig{
		User:     "envuser",
		Password: "envpass",
		Host:     "envhost",
		Port:     6543,
		Name:     "envdb",
	}, env)
}

func TestFromEnv_UnsetPort(t *testing.T) {
	t.Setenv(EnvPort, "")

	env, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0, env.Port, "unset port is resolved to the default later")
}

func TestFromEnv_BadPort(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")

	_, err := FromEnv()
	assert.ErrorIs(t, err, pgfetch.ErrInvalidConfig)
}

func TestResolve_Precedence(t *testing.T) {
	file := &ProjectConfig{
		Connection: ConnectionConfig{
			Host:     "filehost",
			Port:     5433,
			Username: "fileuser",
			Database: "filedb",
		},
		Fetch: FetchConfig{MaxAttempts: 7},
	}
	env := EnvConfig{Host: "envhost", User: "envuser", Password: "envpass"}
	o := Overrides{Host: "flaghost", Limit: "100"}

	conn, fetch, err := Resolve(file, env, o)
	require.NoError(t, err)

	assert.Equal(t, "flaghost", conn.Host, "flag beats env and file")
	assert.Equal(t, "envuser", conn.Username, "env beats file")
	assert.Equal(t, "envpass", conn.Password)
	assert.Equal(t, 5433, conn.Port, "file beats default")
	assert.Equal(t, "filedb", conn.Database)
	assert.Equal(t, 7, fetch.MaxAttempts)
	assert.Equal(t, "100", fetch.Limit)
}

func TestResolve_Defaults(t *testing.T) {
	conn, fetch, err := Resolve(nil, EnvConfig{}, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, pgfetch.DefaultPort, conn.Port)
	assert.Equal(t, pgfetch.AuthMethodStandard, conn.AuthMethod)
	assert.Equal(t, pgfetch.DefaultMaxAttempts, fetch.MaxAttempts)
}

func TestResolve_AuthMethod(t *testing.T) {
	file := &ProjectConfig{Connection: ConnectionConfig{AuthMethod: "azure-entra-id"}}

	conn, _, err := Resolve(file, EnvConfig{}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, pgfetch.AuthMethodAzureEntraID, conn.AuthMethod)

	conn, _, err = Resolve(file, EnvConfig{}, Overrides{AuthMethod: "google-iam"})
	require.NoError(t, err)
	assert.Equal(t, pgfetch.AuthMethodGoogleIAM, conn.AuthMethod)

	_, _, err = Resolve(nil, EnvConfig{}, Overrides{AuthMethod: "kerberos"})
	assert.ErrorIs(t, err, pgfetch.ErrInvalidConfig)
}
