package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultSchedule runs the cleanup once a day at 09:30.
const DefaultSchedule = "30 9 * * *"

// Config holds application configuration
type Config struct {
	TenantID              string
	ClientID              string
	ClientSecret          string
	CertificateFile       string
	CertificatePassword   string
	CertificateThumbprint string
	AdminGroupID          string
	ExclusiveDemosGroupID string
	DryRun                bool
	Schedule              string
	LogLevel              string
	LogFormat             string
}

// Error reports an invalid or missing configuration key. It is fatal at
// startup; no directory call is made once Validate fails.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		TenantID:              os.Getenv("TENANT_ID"),
		ClientID:              os.Getenv("CLIENT_ID"),
		ClientSecret:          os.Getenv("CLIENT_SECRET"),
		CertificateFile:       os.Getenv("CERTIFICATE_FILE"),
		CertificatePassword:   os.Getenv("CERTIFICATE_PASSWORD"),
		CertificateThumbprint: os.Getenv("CERTIFICATE_THUMBPRINT"),
		AdminGroupID:          os.Getenv("ADMIN_GROUP_ID"),
		ExclusiveDemosGroupID: os.Getenv("EXCLUSIVE_DEMOS_GROUP_ID"),
		DryRun:                getBoolEnv("DRY_RUN", false),
		Schedule:              getEnvOrDefault("SCHEDULE", DefaultSchedule),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// Validate checks the identity parameters eagerly so that a misconfigured
// deployment fails before any directory call is made.
func (c *Config) Validate() error {
	if c.TenantID == "" {
		return &Error{Key: "TENANT_ID", Reason: "required"}
	}
	if c.ClientID == "" {
		return &Error{Key: "CLIENT_ID", Reason: "required"}
	}

	hasCertificate := c.CertificateFile != ""
	hasSecret := c.ClientSecret != ""
	switch {
	case hasCertificate && hasSecret:
		return &Error{Key: "CLIENT_SECRET", Reason: "set CERTIFICATE_FILE or CLIENT_SECRET, not both"}
	case !hasCertificate && !hasSecret:
		return &Error{Key: "CERTIFICATE_FILE", Reason: "either CERTIFICATE_FILE or CLIENT_SECRET is required"}
	case hasCertificate && c.CertificateThumbprint == "":
		return &Error{Key: "CERTIFICATE_THUMBPRINT", Reason: "required with CERTIFICATE_FILE"}
	}

	return nil
}

// SafeListGroupIDs returns the configured protected-group IDs. Unset groups
// come through as empty strings and are skipped by the exclusion builder.
func (c *Config) SafeListGroupIDs() []string {
	return []string{c.AdminGroupID, c.ExclusiveDemosGroupID}
}

// getBoolEnv parses a boolean environment variable
func getBoolEnv(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return strings.ToLower(val) == "true"
}

// getEnvOrDefault returns the variable's value, or a default when unset
func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
