package database

import (
	"fmt"
	"net/url"

	"github.com/pilumvli199/DT6/internal/config"
)

// BuildConnString renders the pgx connection URL for the mirror
// database. The password is the one field that may carry URL
// metacharacters and is escaped; the rest comes from validated config.
func BuildConnString(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
