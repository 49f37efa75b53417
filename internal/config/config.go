// Package config resolves connection and fetch settings from three
// layers: an optional pgfetch.yaml project file, DB_* environment
// variables, and explicit overrides (CLI flags). Precedence is
// overrides > environment > file > defaults, and the resolved values
// are passed into connectors explicitly; nothing downstream reads the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "pgfetch.yaml"

// Environment variables recognized by FromEnv.
const (
	EnvUser     = "DB_USER"
	EnvPassword = "DB_PASSWORD"
	EnvHost     = "DB_HOST"
	EnvPort     = "DB_PORT"
	EnvName     = "DB_NAME"
)

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	AppName        string `yaml:"app_name,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
}

type FetchConfig struct {
	MaxAttempts int    `yaml:"max_attempts,omitempty"`
	Limit       string `yaml:"limit,omitempty"`
	SnapshotDir string `yaml:"snapshot_dir,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig  `yaml:"connection"`
	Fetch      FetchConfig       `yaml:"fetch"`
	Params     map[string]string `yaml:"params"`
}

// Load reads pgfetch.yaml from the given directory.
func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnvConfig holds the connection parameters read from DB_* variables.
// Empty fields mean the variable was unset.
type EnvConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Name     string
}

// FromEnv reads the DB_* environment variables. DB_PORT defaults to
// 5432 when unset; a set but unparseable DB_PORT is an error.
func FromEnv() (EnvConfig, error) {
	env := EnvConfig{
		User:     os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
		Host:     os.Getenv(EnvHost),
		Name:     os.Getenv(EnvName),
	}

	if raw := os.Getenv(EnvPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return env, fmt.Errorf("invalid %s value %q: %w", EnvPort, raw, pgfetch.ErrInvalidConfig)
		}
		env.Port = port
	}

	return env, nil
}

// Overrides carries explicitly supplied values (CLI flags) that win
// over every other layer. Zero values mean "not supplied".
type Overrides struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string

	AuthMethod        string
	AWSRegion         string
	GoogleInstance    string
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	MaxAttempts int
	Limit       string
	SnapshotDir string
	Verbose     bool
}

// Resolve merges the three layers into the resolved configs that
// connectors and the fetcher consume. file may be nil when no
// pgfetch.yaml exists.
func Resolve(file *ProjectConfig, env EnvConfig, o Overrides) (pgfetch.ConnectionConfig, pgfetch.FetchConfig, error) {
	var fileConn ConnectionConfig
	var fileFetch FetchConfig
	if file != nil {
		fileConn = file.Connection
		fileFetch = file.Fetch
	}

	conn := pgfetch.ConnectionConfig{
		Host:     firstString(o.Host, env.Host, fileConn.Host),
		Port:     firstInt(o.Port, env.Port, fileConn.Port, pgfetch.DefaultPort),
		Username: firstString(o.Username, env.User, fileConn.Username),
		Password: firstString(o.Password, env.Password),
		Database: firstString(o.Database, env.Name, fileConn.Database),
		AppName:  fileConn.AppName,

		AWSRegion:         firstString(o.AWSRegion, fileConn.AWSRegion),
		GoogleInstance:    firstString(o.GoogleInstance, fileConn.GoogleInstance),
		AzureTenantID:     firstString(o.AzureTenantID, fileConn.AzureTenantID),
		AzureClientID:     firstString(o.AzureClientID, fileConn.AzureClientID),
		AzureClientSecret: o.AzureClientSecret,
	}

	method, err := pgfetch.ParseAuthMethod(firstString(o.AuthMethod, fileConn.AuthMethod))
	if err != nil {
		return pgfetch.ConnectionConfig{}, pgfetch.FetchConfig{}, err
	}
	conn.AuthMethod = method

	fetch := pgfetch.FetchConfig{
		MaxAttempts: firstInt(o.MaxAttempts, fileFetch.MaxAttempts, pgfetch.DefaultMaxAttempts),
		Limit:       firstString(o.Limit, fileFetch.Limit),
		SnapshotDir: firstString(o.SnapshotDir, fileFetch.SnapshotDir),
		Verbose:     o.Verbose,
	}

	if err := fetch.Validate(); err != nil {
		return pgfetch.ConnectionConfig{}, pgfetch.FetchConfig{}, err
	}

	return conn, fetch, nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
