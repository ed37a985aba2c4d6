package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message})
}

// Validate performs validation of the configuration.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	validateTargets(cfg.Targets, result)
	validateMonitor(&cfg.Monitor, result)
	validateAPI(&cfg.API, result)
	validateMQTT(&cfg.MQTT, result)
	validateLogging(&cfg.Logging, result)

	return result
}

func validateTargets(targets []Target, result *ValidationResult) {
	if len(targets) == 0 {
		result.AddWarning("targets", "no targets configured, only ad-hoc queries will work")
	}

	seen := make(map[string]bool)
	for i, t := range targets {
		field := fmt.Sprintf("targets[%d].address", i)

		if strings.TrimSpace(t.Address) == "" {
			result.AddError(field, "address is required")
			continue
		}
		if _, _, err := net.SplitHostPort(t.Address); err != nil {
			result.AddError(field, fmt.Sprintf("address must be host:port: %v", err))
			continue
		}
		if seen[t.Address] {
			result.AddError(field, fmt.Sprintf("duplicate target address %s", t.Address))
		}
		seen[t.Address] = true
	}
}

func validateMonitor(m *Monitor, result *ValidationResult) {
	if m.PollIntervalSec < 1 {
		result.AddError("monitor.poll_interval_sec", "poll interval must be at least 1 second")
	}
	if m.ConnectTimeoutSec < 1 {
		result.AddError("monitor.connect_timeout_sec", "connect timeout must be at least 1 second")
	}
	if m.PollIntervalSec >= 1 && m.ConnectTimeoutSec > m.PollIntervalSec {
		result.AddWarning("monitor.connect_timeout_sec",
			"connect timeout exceeds poll interval, polls may overlap")
	}
}

func validateAPI(a *API, result *ValidationResult) {
	if !a.Enabled {
		return
	}
	if a.Port < 1 || a.Port > 65535 {
		result.AddError("api.port", fmt.Sprintf("invalid port %d", a.Port))
	}
}

func validateMQTT(m *MQTT, result *ValidationResult) {
	if !m.Enabled {
		return
	}
	if strings.TrimSpace(m.BrokerURL) == "" {
		result.AddError("mqtt.broker_url", "broker URL is required when MQTT is enabled")
	}
	if m.Port < 1 || m.Port > 65535 {
		result.AddError("mqtt.port", fmt.Sprintf("invalid port %d", m.Port))
	}
	if (m.CertFile == "") != (m.KeyFile == "") {
		result.AddError("mqtt.cert_file", "cert_file and key_file must be set together")
	}
}

func validateLogging(l *Logging, result *ValidationResult) {
	switch l.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		result.AddWarning("logging.level",
			fmt.Sprintf("unknown log level %q, falling back to info", l.Level))
	}
}
