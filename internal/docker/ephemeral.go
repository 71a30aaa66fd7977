package docker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/strslice"
	"github.com/google/uuid"
)

// ephemeralName builds a process-unique container name. The uuid suffix
// disambiguates parallel invocations inside the same process.
func ephemeralName() string {
	return fmt.Sprintf("k3dev-ephemeral-%d-%s", os.Getpid(), uuid.NewString()[:8])
}

// removedUnderUs reports whether err is the daemon telling us the container
// is already gone, which an auto-remove container does on its own the moment
// it exits.
func removedUnderUs(err error) bool {
	if cerrdefs.IsNotFound(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "No such container") || strings.Contains(msg, "not found")
}

// RunEphemeral runs cmd in a throwaway container and waits for it to exit.
// The image is pulled if absent. binds are plain "src:dst" bind strings. A
// non-zero exit comes back as an *ExitError; the container is removed either
// way, by the daemon's auto-remove or by us.
func (m *Manager) RunEphemeral(ctx context.Context, image string, cmd []string, binds []string) error {
	if err := m.EnsureImage(ctx, image); err != nil {
		return err
	}

	name := ephemeralName()
	config := &container.Config{
		Image: image,
		Cmd:   strslice.StrSlice(cmd),
	}
	hostConfig := &container.HostConfig{
		AutoRemove: true,
		Binds:      binds,
	}

	createCtx, cancel := unaryCtx(ctx)
	if _, err := m.api.ContainerCreate(createCtx, config, hostConfig, nil, nil, name); err != nil {
		cancel()
		return fmt.Errorf("failed to create container %s: %w", name, err)
	}
	cancel()

	if err := m.StartContainer(ctx, name); err != nil {
		return err
	}
	log.Debug("ephemeral container started", "container", name, "image", image)

	// The wait stream runs unbounded; auto-remove can tear the container
	// down before the response arrives, which counts as a clean exit.
	waitCh, errCh := m.api.ContainerWait(ctx, name, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil && !removedUnderUs(err) {
			_ = m.RemoveContainer(ctx, name, true)
			return fmt.Errorf("failed to wait for container %s: %w", name, err)
		}
	case result := <-waitCh:
		if result.Error != nil && result.Error.Message != "" {
			return fmt.Errorf("failed to wait for container %s: %s", name, result.Error.Message)
		}
		if result.StatusCode != 0 {
			// Auto-remove usually beats us to it; force-remove anyway so a
			// failed container never lingers.
			_ = m.RemoveContainer(ctx, name, true)
			return &ExitError{Code: int(result.StatusCode)}
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := m.RemoveContainer(ctx, name, true); err != nil {
		log.Debug("ephemeral remove ignored", "container", name, "error", err)
	}
	return nil
}
