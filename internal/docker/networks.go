package docker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/network"
)

// CreateNetwork ensures a network named name exists. Calling it for an
// existing network is a no-op, including when a concurrent creator wins the
// race between our inspect and create.
func (m *Manager) CreateNetwork(ctx context.Context, name string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	if _, err := m.api.NetworkInspect(ctx, name, network.InspectOptions{}); err == nil {
		return nil
	}

	if _, err := m.api.NetworkCreate(ctx, name, network.CreateOptions{}); err != nil {
		if cerrdefs.IsConflict(err) {
			// Lost the create race; the network exists, which is what we want.
			return nil
		}
		return fmt.Errorf("failed to create network %s: %w", name, err)
	}

	log.Debug("network created", "network", name)
	return nil
}

// RemoveNetwork removes a network, tolerating absence and in-use errors so
// teardown sweeps never fail. After it returns, the network is gone or was
// never there; callers needing certainty must inspect separately.
func (m *Manager) RemoveNetwork(ctx context.Context, name string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	if err := m.api.NetworkRemove(ctx, name); err != nil {
		log.Debug("network remove ignored", "network", name, "error", err)
	}
	return nil
}

// NetworkExists reports whether a network named name exists.
func (m *Manager) NetworkExists(ctx context.Context, name string) bool {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	_, err := m.api.NetworkInspect(ctx, name, network.InspectOptions{})
	return err == nil
}
