package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
)

// stopGrace is how long the daemon waits for a container to exit before
// killing it.
const stopGrace = 10 * time.Second

// ContainerExists reports whether the daemon can inspect name. Transport
// failures are indistinguishable from absence here; callers that need the
// distinction should use ContainerStatus.
func (m *Manager) ContainerExists(ctx context.Context, name string) bool {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	_, err := m.api.ContainerInspect(ctx, name)
	return err == nil
}

// ContainerRunning reports whether name exists and its state flag is running.
func (m *Manager) ContainerRunning(ctx context.Context, name string) bool {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	info, err := m.api.ContainerInspect(ctx, name)
	if err != nil || info.State == nil {
		return false
	}
	return info.State.Running
}

// ContainerStatus returns the daemon's status string for name ("running",
// "exited", "created", ...). ok is false when the container could not be
// inspected.
func (m *Manager) ContainerStatus(ctx context.Context, name string) (status string, ok bool) {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	info, err := m.api.ContainerInspect(ctx, name)
	if err != nil || info.State == nil {
		return "", false
	}
	return info.State.Status, true
}

// StartContainer starts a stopped container.
func (m *Manager) StartContainer(ctx context.Context, name string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	if err := m.api.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", name, err)
	}
	return nil
}

// StopContainer stops a running container with the default grace period.
func (m *Manager) StopContainer(ctx context.Context, name string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	grace := int(stopGrace.Seconds())
	if err := m.api.ContainerStop(ctx, name, container.StopOptions{Timeout: &grace}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", name, err)
	}
	return nil
}

// RemoveContainer removes a container, optionally killing it first.
func (m *Manager) RemoveContainer(ctx context.Context, name string, force bool) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	if err := m.api.ContainerRemove(ctx, name, container.RemoveOptions{Force: force}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", name, err)
	}
	return nil
}

// ListContainersByPrefix returns the names of all containers, running or
// not, whose name starts with prefix. The daemon's name filter matches
// substrings, so the result is re-filtered client-side for true prefix
// semantics.
func (m *Manager) ListContainersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	containers, err := m.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", prefix)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var names []string
	for _, c := range containers {
		for _, n := range c.Names {
			n = strings.TrimPrefix(n, "/")
			if strings.HasPrefix(n, prefix) {
				names = append(names, n)
			}
		}
	}
	return names, nil
}

// CleanupContainersByPrefix stops and force-removes every container whose
// name starts with prefix. Per-container failures are logged and swallowed;
// only an enumeration failure is returned.
func (m *Manager) CleanupContainersByPrefix(ctx context.Context, prefix string) error {
	names, err := m.ListContainersByPrefix(ctx, prefix)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := m.StopContainer(ctx, name); err != nil {
			log.Debug("cleanup: stop failed", "container", name, "error", err)
		}
		if err := m.RemoveContainer(ctx, name, true); err != nil {
			log.Debug("cleanup: remove failed", "container", name, "error", err)
		}
	}
	return nil
}
