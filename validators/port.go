package validators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	MinPort = 1
	MaxPort = 65535

	// FallbackPort is returned by GetDefaultPort for unknown app types.
	FallbackPort = 3000

	DefaultProbeTimeout = 2 * time.Second
)

// Port is a port number known to be within [MinPort, MaxPort].
// Obtain one through ValidatePort or ParsePort.
type Port struct {
	value int
}

// Int returns the port number.
func (p Port) Int() int {
	return p.value
}

func (p Port) String() string {
	return strconv.Itoa(p.value)
}

// defaultPorts maps app types to the port their dev/prod server listens on.
var defaultPorts = map[string]int{
	"nextjs": 3000,
	"nodejs": 3000,
	"vite":   5173,
	"python": 8000,
	"static": 80,
}

// IsValidPort reports whether p lies in [1, 65535].
func IsValidPort(p int) bool {
	return p >= MinPort && p <= MaxPort
}

// IsValidPortString reports whether s is a decimal integer in [1, 65535].
func IsValidPortString(s string) bool {
	_, err := ParsePort(s)
	return err == nil
}

// ValidatePort returns p as a Port if it is in range.
func ValidatePort(p int) (Port, error) {
	if !IsValidPort(p) {
		return Port{}, newValidationError(FieldPort, strconv.Itoa(p),
			fmt.Sprintf("port must be between %d and %d", MinPort, MaxPort))
	}
	return Port{value: p}, nil
}

// ParsePort converts s to an integer and validates its range.
func ParsePort(s string) (Port, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Port{}, newValidationError(FieldPort, s, "port cannot be empty")
	}

	n, err := strconv.Atoi(trimmed)
	if errors.Is(err, strconv.ErrRange) {
		return Port{}, newValidationError(FieldPort, s,
			fmt.Sprintf("port must be between %d and %d", MinPort, MaxPort))
	}
	if err != nil {
		return Port{}, newValidationError(FieldPort, s, "port must be an integer")
	}

	if !IsValidPort(n) {
		return Port{}, newValidationError(FieldPort, s,
			fmt.Sprintf("port must be between %d and %d", MinPort, MaxPort))
	}
	return Port{value: n}, nil
}

// GetDefaultPort returns the conventional port for appType, or FallbackPort.
func GetDefaultPort(appType string) int {
	if port, ok := defaultPorts[strings.ToLower(strings.TrimSpace(appType))]; ok {
		return port
	}
	return FallbackPort
}

// KnownAppTypes lists the app types with a registered default port, sorted.
func KnownAppTypes() []string {
	types := make([]string, 0, len(defaultPorts))
	for t := range defaultPorts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// PortProber checks whether a local port can currently be bound.
//
// The answer is only a snapshot: nothing is reserved, so another process may
// take the port between the probe and its use.
type PortProber struct {
	// Host to bind on; empty means all interfaces.
	Host    string
	Timeout time.Duration
}

// NewPortProber returns a prober for host using timeout (DefaultProbeTimeout if zero).
func NewPortProber(host string, timeout time.Duration) *PortProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &PortProber{Host: host, Timeout: timeout}
}

// Available binds port briefly and releases it. Out-of-range ports are never available.
func (p *PortProber) Available(ctx context.Context, port int) bool {
	if !IsValidPort(port) {
		return false
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	address := net.JoinHostPort(p.Host, strconv.Itoa(port))

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		slog.Debug("Port probe failed", "address", address, "error", err)
		return false
	}

	if err := listener.Close(); err != nil {
		slog.Warn("Failed to release probed port", "address", address, "error", err)
	}
	return true
}

// IsPortAvailable probes port on all interfaces with the default timeout.
func IsPortAvailable(port int) bool {
	return NewPortProber("", DefaultProbeTimeout).Available(context.Background(), port)
}
