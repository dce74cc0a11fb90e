// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

// DSN assembles the lib/pq connection string. A full DATABASE_URL, when set,
// wins over the individual DB_* parts so hosted deployments can hand us one
// opaque value.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"dbname=" + d.Database,
		"sslmode=" + d.SSLMode,
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}

	return strings.Join(parts, " ")
}

// Redacted is the DSN safe for startup logs.
func (d *DatabaseConfig) Redacted() string {
	if d.URL != "" {
		return "DATABASE_URL (redacted)"
	}
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Database, d.SSLMode)
}
