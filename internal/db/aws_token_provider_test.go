package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAWSIAMTokenProvider_Validation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		region   string
		username string
		wantErr  string
	}{
		{name: "missing endpoint", region: "us-east-1", username: "reader", wantErr: "RDS endpoint"},
		{name: "missing region", endpoint: "db.example.com:5432", username: "reader", wantErr: "--aws-region"},
		{name: "missing username", endpoint: "db.example.com:5432", region: "us-east-1", wantErr: "database user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAWSIAMTokenProvider(tt.endpoint, tt.region, tt.username)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewAWSIAMTokenProvider_String(t *testing.T) {
	p, err := NewAWSIAMTokenProvider("db.example.com:5432", "us-east-1", "reader")
	require.NoError(t, err)
	assert.Contains(t, p.String(), "db.example.com:5432")
	assert.Contains(t, p.String(), "us-east-1")
}
