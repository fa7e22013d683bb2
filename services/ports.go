package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/validators"
)

// resolvePort returns the port an app of appType should listen on. An
// explicit request is validated and checked; otherwise the search starts at
// the type's default port and walks upward.
func (s *AppService) resolvePort(ctx context.Context, appType domain.AppType, requested string) (int, error) {
	if requested == "" && appType.ServedByProxy() {
		return appType.DefaultPort(), nil
	}

	used, err := s.repo.UsedPorts()
	if err != nil {
		return 0, fmt.Errorf("failed to load registered ports: %w", err)
	}

	if requested != "" {
		port, err := validators.ParsePort(requested)
		if err != nil {
			return 0, err
		}
		if appType.ServedByProxy() {
			return port.Int(), nil
		}
		if slices.Contains(used, port.Int()) {
			return 0, fmt.Errorf("port %d is already assigned to another app", port.Int())
		}
		if !s.ports.Available(ctx, port.Int()) {
			return 0, fmt.Errorf("port %d is already in use on this host", port.Int())
		}
		return port.Int(), nil
	}

	start := appType.DefaultPort()
	end := min(start+s.config.PortSearchLimit-1, validators.MaxPort)
	for port := start; port <= end; port++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if slices.Contains(used, port) {
			continue
		}
		if s.ports.Available(ctx, port) {
			return port, nil
		}
	}

	return 0, fmt.Errorf("no free port between %d and %d", start, end)
}
