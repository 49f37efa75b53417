package db

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// BuildConnectionString converts a ConnectionConfig to a PostgreSQL URI for pgx.
//
// Transport encryption is mandatory for every fetch session: sslmode is
// always forced to "require" regardless of what the config carries. The
// data sets this tool pulls travel over public networks, so there is no
// plaintext escape hatch.
func BuildConnectionString(config *pgfetch.ConnectionConfig) string {
	port := config.Port
	if port == 0 {
		port = pgfetch.DefaultPort
	}

	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", config.Host, port),
		Path:   "/" + config.Database,
	}

	if config.Username != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.Username, config.Password)
		} else {
			u.User = url.User(config.Username)
		}
	}

	query := url.Values{}
	query.Set("sslmode", "require")
	if config.AppName != "" {
		query.Set("application_name", config.AppName)
	}
	if config.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}

	for key, value := range config.AdditionalParams {
		if key == "sslmode" {
			continue
		}
		query.Set(key, value)
	}

	u.RawQuery = query.Encode()
	return u.String()
}
