// Package config provides configuration loading for muledocd.
//
// Configuration is loaded from a YAML file, then overridden by environment
// variables, with hardcoded defaults filling the gaps. Every scraped
// documentation page is addressed through this package so that operators can
// repoint the scraper at a mirror without rebuilding.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the complete muledocd configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Docs      DocsConfig      `koanf:"docs"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"http_host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// Address returns the host:port pair the HTTP server binds to.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DocsConfig names the vendor documentation pages the scraper reads and the
// transport settings used to fetch them.
type DocsConfig struct {
	// RuntimeReleasesURL is the release cadence page listing Mule runtime
	// versions with their EDGE/LTS channel markers.
	RuntimeReleasesURL string `koanf:"runtime_releases_url"`

	// JavaSupportURL is the page carrying the runtime to JDK support matrix.
	JavaSupportURL string `koanf:"java_support_url"`

	// DataWeaveURL is the DataWeave documentation landing page with the
	// language to runtime compatibility table.
	DataWeaveURL string `koanf:"dataweave_url"`

	// ConnectorsURL is the connector documentation landing page.
	ConnectorsURL string `koanf:"connectors_url"`

	// ConnectorReleaseNotesURL is the index page linking to the release
	// notes of every connector.
	ConnectorReleaseNotesURL string `koanf:"connector_release_notes_url"`

	// DataWeaveReleaseNotesTemplate builds per-version DataWeave release
	// note URLs. It must contain a {version} placeholder.
	DataWeaveReleaseNotesTemplate string `koanf:"dataweave_release_notes_template"`

	// UserAgent is sent on every request. The vendor site serves a reduced
	// page to generic client strings, so this defaults to a browser UA.
	UserAgent string `koanf:"user_agent"`

	// Accept is the Accept header sent on every request.
	Accept string `koanf:"accept"`

	// FetchTimeout bounds each page fetch.
	FetchTimeout Duration `koanf:"fetch_timeout"`
}

// DataWeaveReleaseNotesURL expands the release notes template for a
// DataWeave version such as "2.4".
func (d DocsConfig) DataWeaveReleaseNotesURL(version string) string {
	return strings.ReplaceAll(d.DataWeaveReleaseNotesTemplate, "{version}", version)
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	Enabled        bool    `koanf:"enabled"`
	Endpoint       string  `koanf:"endpoint"`
	Protocol       string  `koanf:"protocol"`
	ServiceName    string  `koanf:"service_name"`
	ServiceVersion string  `koanf:"service_version"`
	Insecure       bool    `koanf:"insecure"`
	SampleRate     float64 `koanf:"sample_rate"`
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout or fetch timeout is not positive
//   - Any documentation URL is missing or not absolute http(s)
//   - The DataWeave release notes template lacks its {version} placeholder
//   - The User-Agent is empty
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}

	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Docs.FetchTimeout.Duration() <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	pages := map[string]string{
		"runtime_releases_url":        c.Docs.RuntimeReleasesURL,
		"java_support_url":            c.Docs.JavaSupportURL,
		"dataweave_url":               c.Docs.DataWeaveURL,
		"connectors_url":              c.Docs.ConnectorsURL,
		"connector_release_notes_url": c.Docs.ConnectorReleaseNotesURL,
	}
	for name, raw := range pages {
		if err := validateDocURL(raw); err != nil {
			return fmt.Errorf("docs.%s: %w", name, err)
		}
	}

	if err := validateDocURL(c.Docs.DataWeaveReleaseNotesTemplate); err != nil {
		return fmt.Errorf("docs.dataweave_release_notes_template: %w", err)
	}
	if !strings.Contains(c.Docs.DataWeaveReleaseNotesTemplate, "{version}") {
		return errors.New("docs.dataweave_release_notes_template must contain {version}")
	}

	if c.Docs.UserAgent == "" {
		return errors.New("docs.user_agent must not be empty")
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("telemetry.service_name required when telemetry is enabled")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be in [0, 1], got %g", c.Telemetry.SampleRate)
	}

	return nil
}

func validateDocURL(raw string) error {
	if raw == "" {
		return errors.New("URL must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must be absolute http(s), got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host, got %q", raw)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9001
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	// Docs defaults point at the vendor documentation site
	if cfg.Docs.RuntimeReleasesURL == "" {
		cfg.Docs.RuntimeReleasesURL = "https://docs.mulesoft.com/release-notes/mule-runtime/lts-edge-release-cadence"
	}
	if cfg.Docs.JavaSupportURL == "" {
		cfg.Docs.JavaSupportURL = "https://docs.mulesoft.com/general/java-support"
	}
	if cfg.Docs.DataWeaveURL == "" {
		cfg.Docs.DataWeaveURL = "https://docs.mulesoft.com/dataweave/"
	}
	if cfg.Docs.ConnectorsURL == "" {
		cfg.Docs.ConnectorsURL = "https://docs.mulesoft.com/connectors/"
	}
	if cfg.Docs.ConnectorReleaseNotesURL == "" {
		cfg.Docs.ConnectorReleaseNotesURL = "https://docs.mulesoft.com/connectors/introduction/connector-release-notes"
	}
	if cfg.Docs.DataWeaveReleaseNotesTemplate == "" {
		cfg.Docs.DataWeaveReleaseNotesTemplate = "https://docs.mulesoft.com/release-notes/dataweave/dataweave-{version}-release-notes"
	}
	if cfg.Docs.UserAgent == "" {
		cfg.Docs.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if cfg.Docs.Accept == "" {
		cfg.Docs.Accept = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	}
	if cfg.Docs.FetchTimeout == 0 {
		cfg.Docs.FetchTimeout = Duration(30 * time.Second)
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	// Telemetry defaults (export stays off unless enabled explicitly)
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "muledocd"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
}
