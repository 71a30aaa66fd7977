package docker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types/volume"
)

// CreateVolume creates a named volume. Unlike networks there is no
// pre-check; the daemon treats an existing name as success.
func (m *Manager) CreateVolume(ctx context.Context, name string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	if _, err := m.api.VolumeCreate(ctx, volume.CreateOptions{Name: name}); err != nil {
		return fmt.Errorf("failed to create volume %s: %w", name, err)
	}
	return nil
}

// RemoveVolume force-removes a volume, tolerating absence.
func (m *Manager) RemoveVolume(ctx context.Context, name string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	if err := m.api.VolumeRemove(ctx, name, true); err != nil {
		log.Debug("volume remove ignored", "volume", name, "error", err)
	}
	return nil
}

// VolumeExists reports whether a volume named name exists.
func (m *Manager) VolumeExists(ctx context.Context, name string) bool {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	_, err := m.api.VolumeInspect(ctx, name)
	return err == nil
}
