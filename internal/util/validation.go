package util

import (
	"fmt"
	"net"

	"github.com/google/uuid"

	"sgci.io/catalog/models"
)

// ValidateUUID checks if a string is a valid UUID.
//
// Example:
//
//	if err := util.ValidateUUID(r.Header.Get("X-Request-ID")); err != nil {
//	    id = uuid.NewString()
//	}
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid UUID format: %w", err)
	}
	return nil
}

// ValidateIP checks if a string is a valid IP address (IPv4 or IPv6).
func ValidateIP(ip string) error {
	if parsed := net.ParseIP(ip); parsed == nil {
		return fmt.Errorf("invalid IP address %q", ip)
	}
	return nil
}

// ValidatePortRange checks if a port number is in valid range (1-65535).
func ValidatePortRange(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// CheckEndpoints reports problems in the hosts and connections of a decoded
// resource. These fields are advisory, so the findings are warnings and do
// not make the record invalid. Zero ports are treated as unset.
//
// Example:
//
//	for _, w := range util.CheckEndpoints(res) {
//	    logger.Warn("endpoint warning", zap.String("resource_id", res.ID), zap.String("warning", w))
//	}
func CheckEndpoints(res models.Resource) []string {
	var warnings []string

	for i, h := range res.Hosts {
		if h.Hostname == "" && h.IP == "" {
			warnings = append(warnings, fmt.Sprintf("hosts[%d]: neither hostname nor ip set", i))
		}
		if h.IP != "" {
			if err := ValidateIP(h.IP); err != nil {
				warnings = append(warnings, fmt.Sprintf("hosts[%d]: %v", i, err))
			}
		}
	}

	for i, c := range res.Connections {
		if c.Port != 0 {
			if err := ValidatePortRange(c.Port); err != nil {
				warnings = append(warnings, fmt.Sprintf("connections[%d].port: %v", i, err))
			}
		}
		if c.ProxyPort != 0 {
			if err := ValidatePortRange(c.ProxyPort); err != nil {
				warnings = append(warnings, fmt.Sprintf("connections[%d].proxyPort: %v", i, err))
			}
		}
		if c.ProxyPort != 0 && c.ProxyHost == "" {
			warnings = append(warnings, fmt.Sprintf("connections[%d]: proxyPort set without proxyHost", i))
		}
	}

	return warnings
}
