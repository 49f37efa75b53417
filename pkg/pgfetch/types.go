package pgfetch

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConnectionConfig represents resolved connection parameters.
// It is built by the caller (CLI resolver or library user) and passed
// explicitly into connectors; nothing in this package reads ambient
// environment state.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM authentication parameters (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance connection name: project:region:instance
	// (used when AuthMethod is AuthMethodGoogleIAM)
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate checks that all parameters required to open a connection are set.
// It returns a multi-error if multiple required fields are missing.
//
// Password is only required for standard authentication; token-based
// methods acquire the credential at connect time.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}

	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}

	if c.Username == "" {
		errs = append(errs, fmt.Errorf("username is required: %w", ErrInvalidConfig))
	}

	if c.AuthMethod == AuthMethodStandard && c.Password == "" {
		errs = append(errs, fmt.Errorf("password is required: %w", ErrInvalidConfig))
	}

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range: %w", c.Port, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                     // AWS IAM Database Authentication
	AuthMethodGoogleIAM                  // Google Cloud SQL IAM
	AuthMethodAzureEntraID               // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod converts a configuration string to an AuthMethod.
// The empty string selects standard authentication.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(s) {
	case "", "standard":
		return AuthMethodStandard, nil
	case "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("unknown auth method %q (expected standard, aws-iam, google-iam, or azure-entra-id): %w", s, ErrInvalidConfig)
	}
}

// FetchConfig contains all parameters for a batch fetch session.
type FetchConfig struct {
	// MaxAttempts is the retry budget for the whole session.
	// Zero selects DefaultMaxAttempts.
	MaxAttempts int

	// Limit, when non-empty, is spliced into every query as a LIMIT clause
	// (before the FOR READ ONLY marker if present).
	Limit string

	// SnapshotDir is where per-attempt result snapshots are written.
	// Empty disables snapshotting.
	SnapshotDir string

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks the FetchConfig for invalid values.
func (c *FetchConfig) Validate() error {
	var errs []error

	if c.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("max attempts cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
