package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

func TestWrapConnectionError_Classification(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "refused", raw: "dial tcp 127.0.0.1:5432: connection refused", expected: "connection refused"},
		{name: "dns", raw: "lookup dbhost: no such host", expected: "cannot resolve host"},
		{name: "auth", raw: "FATAL: password authentication failed for user", expected: "password authentication failed"},
		{name: "missing db", raw: `FATAL: database "nope" does not exist`, expected: "does not exist"},
		{name: "timeout", raw: "dial tcp: i/o timeout: connection timed out", expected: "timed out"},
		{name: "tls", raw: "server refused TLS connection", expected: "SSL/TLS connection error"},
		{name: "saturated", raw: "FATAL: sorry, too many connections", expected: "too many connections"},
		{name: "other", raw: "something unexpected", expected: "something unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapConnectionError(errors.New(tt.raw), "dbhost", 5432, "nope")

			assert.ErrorIs(t, wrapped, pgfetch.ErrConnectionFailed)
			assert.Contains(t, wrapped.Error(), tt.expected)
		})
	}
}

func TestWrapConnectionError_PreservesOriginal(t *testing.T) {
	original := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	wrapped := wrapConnectionError(fmt.Errorf("connect: %w", original), "10.0.0.1", 5432, "db")

	assert.ErrorIs(t, wrapped, original)
}

func TestStandardConnector_FailsFastOnMissingParams(t *testing.T) {
	connector := NewStandardConnector(&pgfetch.ConnectionConfig{
		Host: "localhost",
		// Database, Username, Password missing
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	pool, err := connector.Connect(ctx)

	require.Error(t, err)
	assert.Nil(t, pool)
	assert.ErrorIs(t, err, pgfetch.ErrInvalidConfig)
	// Validation must not be a connection failure
	assert.NotErrorIs(t, err, pgfetch.ErrConnectionFailed)
}

func TestNewConnector_SelectsByAuthMethod(t *testing.T) {
	base := pgfetch.ConnectionConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "db",
		Username: "user",
		Password: "pw",
	}

	t.Run("standard", func(t *testing.T) {
		cfg := base
		connector, err := NewConnector(&cfg)
		require.NoError(t, err)
		assert.IsType(t, &StandardConnector{}, connector)
	})

	t.Run("aws", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = pgfetch.AuthMethodAWSIAM
		cfg.AWSRegion = "eu-west-1"
		connector, err := NewConnector(&cfg)
		require.NoError(t, err)
		assert.IsType(t, &TokenBasedConnector{}, connector)
	})

	t.Run("aws missing region", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = pgfetch.AuthMethodAWSIAM
		_, err := NewConnector(&cfg)
		assert.Error(t, err)
	})

	t.Run("google missing instance", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = pgfetch.AuthMethodGoogleIAM
		_, err := NewConnector(&cfg)
		assert.ErrorIs(t, err, pgfetch.ErrInvalidConfig)
	})

	t.Run("google", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = pgfetch.AuthMethodGoogleIAM
		cfg.GoogleInstance = "proj:region:instance"
		connector, err := NewConnector(&cfg)
		require.NoError(t, err)
		assert.IsType(t, &GoogleCloudSQLConnector{}, connector)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = pgfetch.AuthMethod(99)
		_, err := NewConnector(&cfg)
		assert.ErrorIs(t, err, pgfetch.ErrInvalidConfig)
	})
}

type failingTokenProvider struct{}

func (f *failingTokenProvider) GetToken(_ context.Context) (string, time.Time, error) {
	return "", time.Time{}, errors.New("no credentials available")
}

func (f *failingTokenProvider) String() string { return "failingTokenProvider" }

func TestTokenBasedConnector_TokenFailure(t *testing.T) {
	cfg := &pgfetch.ConnectionConfig{
		Host:       "localhost",
		Port:       5432,
		Database:   "db",
		Username:   "iam_user",
		AuthMethod: pgfetch.AuthMethodAWSIAM,
	}
	connector := NewTokenBasedConnector(cfg, &failingTokenProvider{}, "AWS IAM")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	pool, err := connector.Connect(ctx)

	require.Error(t, err)
	assert.Nil(t, pool)
	assert.ErrorIs(t, err, pgfetch.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "AWS IAM")
}

func TestTokenBasedConnector_ValidatesBeforeTokenAcquisition(t *testing.T) {
	cfg := &pgfetch.ConnectionConfig{
		AuthMethod: pgfetch.AuthMethodAWSIAM,
		// Host, Database, Username missing
	}
	connector := NewTokenBasedConnector(cfg, &failingTokenProvider{}, "AWS IAM")

	_, err := connector.Connect(context.Background())

	assert.ErrorIs(t, err, pgfetch.ErrInvalidConfig)
	assert.NotContains(t, err.Error(), "no credentials available")
}
